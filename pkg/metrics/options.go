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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/intnet-dev/intnet/pkg/private/prom"
)

// Option configures a Factory.
type Option func(*Options)

// Options configures the metrics Factory. Construct it with ApplyOptions.
type Options struct {
	registry prometheus.Registerer
}

func (o Options) registerer() prometheus.Registerer {
	if o.registry != nil {
		return o.registry
	}
	return prometheus.DefaultRegisterer
}

// WithRegistry registers the collectors with registry instead of the default
// registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(o *Options) {
		o.registry = registry
	}
}

// ApplyOptions applies the options in order.
func ApplyOptions(options ...Option) Options {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	return opts
}

// Auto creates a Factory registering with the configured registry.
func (o Options) Auto() Factory {
	return Factory{opts: o}
}

// Factory creates collectors in the intnet namespace and registers them. An
// already registered equal collector is reused, so that several components of
// one process can share the metric families.
type Factory struct {
	opts Options
}

func (f Factory) register(c prometheus.Collector) prometheus.Collector {
	if err := f.opts.registerer().Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func (f Factory) NewCounterVec(
	subsystem, name, help string,
	labelNames ...string,
) *prometheus.CounterVec {

	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: prom.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labelNames)
	return f.register(c).(*prometheus.CounterVec)
}

func (f Factory) NewGaugeVec(
	subsystem, name, help string,
	labelNames ...string,
) *prometheus.GaugeVec {

	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: prom.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labelNames)
	return f.register(g).(*prometheus.GaugeVec)
}
