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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/intnet-dev/intnet/pkg/metrics"
)

func TestNilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.CounterInc(nil)
		metrics.CounterAdd(nil, 3)
		metrics.GaugeSet(nil, 1)
		metrics.GaugeSetBool(nil, true)
		metrics.GaugeAdd(nil, -1)
	})
}

func TestFactory(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := metrics.ApplyOptions(metrics.WithRegistry(reg)).Auto()

	c := f.NewCounterVec("test", "frames_total", "Frames.", "dir")
	metrics.CounterInc(c.WithLabelValues("tx"))
	metrics.CounterAdd(c.WithLabelValues("tx"), 2)

	again := f.NewCounterVec("test", "frames_total", "Frames.", "dir")
	assert.Same(t, c, again)
	assert.Equal(t, 3.0, testutil.ToFloat64(again.WithLabelValues("tx")))

	g := f.NewGaugeVec("test", "up", "Up.", "dir")
	metrics.GaugeSetBool(g.WithLabelValues("rx"), true)
	assert.Equal(t, 1.0, testutil.ToFloat64(g.WithLabelValues("rx")))
	metrics.GaugeSetBool(g.WithLabelValues("rx"), false)
	assert.Equal(t, 0.0, testutil.ToFloat64(g.WithLabelValues("rx")))

	assert.Panics(t, func() {
		f.NewGaugeVec("test", "frames_total", "Frames.", "dir")
	})
}
