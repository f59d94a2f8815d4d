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
	"sort"

	"github.com/intnet-dev/intnet/pkg/intnet/abi"
)

// Status is a snapshot of the switch.
type Status struct {
	GsoCapable bool              `json:"gso_capable"`
	Networks   []NetworkStatus   `json:"networks"`
	Interfaces []InterfaceStatus `json:"interfaces"`
}

// NetworkStatus describes one network.
type NetworkStatus struct {
	Name    string `json:"name"`
	Trunk   string `json:"trunk"`
	Access  string `json:"access"`
	LinkUp  bool   `json:"link_up"`
	Ports   int    `json:"ports"`
	Learned int    `json:"learned"`
}

// InterfaceStatus describes one open interface.
type InterfaceStatus struct {
	Network  string     `json:"network"`
	Handle   abi.Handle `json:"handle"`
	Active   bool       `json:"active"`
	Promisc  bool       `json:"promiscuous"`
	Shared   bool       `json:"shared"`
	Sent     uint64     `json:"sent"`
	Received uint64     `json:"received"`
	Dropped  uint64     `json:"dropped"`
	SendUsed int        `json:"send_used"`
	SendCap  int        `json:"send_capacity"`
	RecvUsed int        `json:"recv_used"`
	RecvCap  int        `json:"recv_capacity"`
}

// Status returns the networks sorted by name and the interfaces sorted by
// handle.
func (s *Switch) Status() Status {
	s.mu.Lock()
	st := Status{GsoCapable: s.gsoCapable}
	networks := make([]*network, 0, len(s.networks))
	for _, n := range s.networks {
		networks = append(networks, n)
	}
	ports := s.sortedPorts(nil)
	s.mu.Unlock()

	sort.Slice(networks, func(i, j int) bool { return networks[i].name < networks[j].name })
	for _, n := range networks {
		st.Networks = append(st.Networks, n.status())
	}
	for _, p := range ports {
		st.Interfaces = append(st.Interfaces, InterfaceStatus{
			Network:  p.net.name,
			Handle:   p.handle,
			Active:   p.active.Load(),
			Promisc:  p.promisc.Load(),
			Shared:   p.seg != nil,
			Sent:     p.sent.Load(),
			Received: p.received.Load(),
			Dropped:  p.dropped.Load(),
			SendUsed: p.buf.Send.Used(),
			SendCap:  p.buf.Send.Capacity(),
			RecvUsed: p.buf.Recv.Used(),
			RecvCap:  p.buf.Recv.Capacity(),
		})
	}
	return st
}

func (n *network) status() NetworkStatus {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return NetworkStatus{
		Name:    n.name,
		Trunk:   n.trunk.Type().String(),
		Access:  n.policies.Access.String(),
		LinkUp:  n.linkUp.Load(),
		Ports:   len(n.ports),
		Learned: n.macs.ItemCount(),
	}
}
