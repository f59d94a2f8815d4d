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

package switchd

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/intnet-dev/intnet/pkg/metrics"
	"github.com/intnet-dev/intnet/pkg/private/prom"
)

const subsystem = "switch"

// Forwarding kinds.
const (
	kindUnicast   = "unicast"
	kindFlood     = "flood"
	kindPromisc   = "promiscuous"
	reasonNoSpace = "no_space"
	reasonBad     = "bad_frame"
	reasonLink    = "link_down"
	reasonNoPeer  = "no_peer"
	reasonIdle    = "inactive"
)

// Metrics are the metric families of the switch.
type Metrics struct {
	Forwarded *prometheus.CounterVec
	Dropped   *prometheus.CounterVec
	Ports     *prometheus.GaugeVec
	Learned   *prometheus.GaugeVec
}

// NewMetrics creates and registers the switch metrics.
func NewMetrics(opts ...metrics.Option) *Metrics {
	f := metrics.ApplyOptions(opts...).Auto()
	return &Metrics{
		Forwarded: f.NewCounterVec(subsystem, "forwarded_frames_total",
			"Total number of frame copies written to a receiving interface.",
			prom.LabelNetwork, "kind"),
		Dropped: f.NewCounterVec(subsystem, "dropped_frames_total",
			"Total number of frames or frame copies dropped by the switch.",
			prom.LabelNetwork, prom.LabelReason),
		Ports: f.NewGaugeVec(subsystem, "interfaces",
			"Number of open interfaces.", prom.LabelNetwork),
		Learned: f.NewGaugeVec(subsystem, "learned_addresses",
			"Number of MAC addresses in the forwarding table.", prom.LabelNetwork),
	}
}

func (m *Metrics) ports(network string) metrics.Gauge {
	if m == nil {
		return nil
	}
	return m.Ports.WithLabelValues(network)
}

func (m *Metrics) learned(network string) metrics.Gauge {
	if m == nil {
		return nil
	}
	return m.Learned.WithLabelValues(network)
}

func (m *Metrics) forwarded(network, kind string) metrics.Counter {
	if m == nil {
		return nil
	}
	return m.Forwarded.WithLabelValues(network, kind)
}

func (m *Metrics) dropped(network, reason string) metrics.Counter {
	if m == nil {
		return nil
	}
	return m.Dropped.WithLabelValues(network, reason)
}
