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

// Package metrics contains the metric interfaces used by the driver and the
// switch, and a factory registering prometheus collectors.
//
// Counter and Gauge are satisfied by the prometheus types. A nil metric is
// valid everywhere; the helpers below skip it, so that components can run
// without metrics.
package metrics

// Counter is a monotonically increasing metric.
type Counter interface {
	Add(delta float64)
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(v float64)
	Add(delta float64)
}

// CounterInc increments c by one if it is not nil.
func CounterInc(c Counter) {
	if c != nil {
		c.Add(1)
	}
}

// CounterAdd adds delta to c if it is not nil.
func CounterAdd(c Counter, delta float64) {
	if c != nil {
		c.Add(delta)
	}
}

// GaugeSet sets g to v if it is not nil.
func GaugeSet(g Gauge, v float64) {
	if g != nil {
		g.Set(v)
	}
}

// GaugeSetBool sets g to 1 if v is true and to 0 otherwise.
func GaugeSetBool(g Gauge, v bool) {
	if v {
		GaugeSet(g, 1)
		return
	}
	GaugeSet(g, 0)
}

// GaugeAdd adds delta to g if it is not nil.
func GaugeAdd(g Gauge, delta float64) {
	if g != nil {
		g.Add(delta)
	}
}
