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

package driver

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/intnet-dev/intnet/pkg/metrics"
	"github.com/intnet-dev/intnet/pkg/private/prom"
)

const subsystem = "driver"

// Label values.
const (
	dirTx = "tx"
	dirRx = "rx"

	reasonLinkDown = "link_down"
	reasonBadFrame = "bad_frame"
	reasonNoBuffer = "no_buffer"
	reasonDevice   = "device"

	errClosed = "err_closed"
)

// Metrics are the metric families of the driver. One Metrics value is
// shared by every driver of a process; each driver curries it with its
// network and interface.
type Metrics struct {
	Frames          *prometheus.CounterVec
	Bytes           *prometheus.CounterVec
	Dropped         *prometheus.CounterVec
	XmitContention  *prometheus.CounterVec
	AuthorityErrors *prometheus.CounterVec
	LinkUp          *prometheus.GaugeVec
}

// NewMetrics creates and registers the driver metrics.
func NewMetrics(opts ...metrics.Option) *Metrics {
	f := metrics.ApplyOptions(opts...).Auto()
	ifLabels := []string{prom.LabelNetwork, prom.LabelInterface}
	with := func(labels ...string) []string {
		return append(append([]string(nil), ifLabels...), labels...)
	}
	return &Metrics{
		Frames: f.NewCounterVec(subsystem, "frames_total",
			"Total number of frames passed through the driver.", with("dir")...),
		Bytes: f.NewCounterVec(subsystem, "bytes_total",
			"Total number of frame bytes passed through the driver.", with("dir")...),
		Dropped: f.NewCounterVec(subsystem, "dropped_frames_total",
			"Total number of frames dropped by the driver.",
			with("dir", prom.LabelReason)...),
		XmitContention: f.NewCounterVec(subsystem, "xmit_contention_total",
			"Total number of BeginXmit calls that found the xmit lock taken.", ifLabels...),
		AuthorityErrors: f.NewCounterVec(subsystem, "authority_errors_total",
			"Total number of failed switch authority requests.",
			with(prom.LabelOperation, prom.LabelResult)...),
		LinkUp: f.NewGaugeVec(subsystem, "link_up",
			"Whether the link is up on both the device and the switch side.", ifLabels...),
	}
}

// ifMetrics are the metrics of one interface. All fields are nil if the
// driver runs without metrics.
type ifMetrics struct {
	txFrames, txBytes metrics.Counter
	rxFrames, rxBytes metrics.Counter
	contention        metrics.Counter
	linkUp            metrics.Gauge
	dropped           func(dir, reason string) metrics.Counter
	authErrors        func(op, result string) metrics.Counter
}

func newIfMetrics(m *Metrics, network, iface string) ifMetrics {
	if m == nil {
		return ifMetrics{
			dropped:    func(string, string) metrics.Counter { return nil },
			authErrors: func(string, string) metrics.Counter { return nil },
		}
	}
	l := prometheus.Labels{prom.LabelNetwork: network, prom.LabelInterface: iface}
	frames := m.Frames.MustCurryWith(l)
	bytes := m.Bytes.MustCurryWith(l)
	dropped := m.Dropped.MustCurryWith(l)
	authErrors := m.AuthorityErrors.MustCurryWith(l)
	return ifMetrics{
		txFrames:   frames.WithLabelValues(dirTx),
		txBytes:    bytes.WithLabelValues(dirTx),
		rxFrames:   frames.WithLabelValues(dirRx),
		rxBytes:    bytes.WithLabelValues(dirRx),
		contention: m.XmitContention.With(l),
		linkUp:     m.LinkUp.With(l),
		dropped: func(dir, reason string) metrics.Counter {
			return dropped.WithLabelValues(dir, reason)
		},
		authErrors: func(op, result string) metrics.Counter {
			return authErrors.WithLabelValues(op, result)
		},
	}
}
