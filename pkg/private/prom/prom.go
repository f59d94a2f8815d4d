// Copyright 2026 The intnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prom contains helpers shared by the prometheus metrics of the
// driver and the switch.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the metric namespace of every intnet metric.
const Namespace = "intnet"

// Common label names.
const (
	// LabelNetwork is the name of the internal network.
	LabelNetwork = "network"
	// LabelInterface identifies an interface of a network.
	LabelInterface = "interface"
	// LabelOperation is the name of an authority operation.
	LabelOperation = "op"
	// LabelResult classifies the outcome of an operation.
	LabelResult = "result"
	// LabelReason classifies dropped frames.
	LabelReason = "reason"
)

// Result values of failed operations.
const (
	ErrTimeout       = "err_timeout"
	ErrInterrupted   = "err_interrupted"
	ErrNotClassified = "err_not_classified"
)

// SafeRegister registers c and returns the registered collector. If an equal
// collector is already registered, that one is returned. Any other
// registration error panics.
func SafeRegister(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// NewCounterVec creates a counter vec registered with the default registry,
// reusing an already registered one of the same name.
func NewCounterVec(subsystem, name, help string, labelNames ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labelNames)
	return SafeRegister(c).(*prometheus.CounterVec)
}

// NewGaugeVec creates a gauge vec registered with the default registry,
// reusing an already registered one of the same name.
func NewGaugeVec(subsystem, name, help string, labelNames ...string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labelNames)
	return SafeRegister(g).(*prometheus.GaugeVec)
}

// ExportElementID exports the daemon ID of the [general] block.
func ExportElementID(id string) {
	NewGaugeVec("", "elem_id", "The daemon ID from the config file.", "cfg").
		WithLabelValues(id).Set(1)
}
