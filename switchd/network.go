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
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mdlayher/ethernet"
	"github.com/patrickmn/go-cache"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/metrics"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// network is an internal network: a set of ports and the table of the MAC
// addresses learned on them.
type network struct {
	name    string
	metrics *Metrics
	logger  log.Logger
	linkUp  atomic.Bool

	mu       sync.RWMutex
	trunk    abi.Trunk
	policies abi.Policies
	ports    map[abi.Handle]*port
	// macs maps the string form of a MAC address to the handle of the port
	// it was last seen on.
	macs *cache.Cache
}

func newNetwork(req abi.OpenRequest, ttl time.Duration, m *Metrics,
	logger log.Logger) *network {

	trunk := req.Trunk
	if trunk == nil {
		trunk = abi.NoTrunk{}
	}
	n := &network{
		name:     req.Network,
		metrics:  m,
		logger:   logger.New("network", req.Network),
		trunk:    trunk,
		policies: req.Policies,
		ports:    make(map[abi.Handle]*port),
		// Expired entries are dropped on lookup and when a port leaves.
		macs: cache.New(ttl, 0),
	}
	n.linkUp.Store(true)
	return n
}

// join checks the open request of an interface joining the network. A
// policy that is fixed on either side must have the same value on both.
// Policies the network leaves unset are taken from the request.
func (n *network) join(req abi.OpenRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var errs serrors.List
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	merged := n.policies
	want := req.Policies
	collect(mergePolicy("access", &merged.Access, want.Access))
	collect(mergePolicy("promisc_clients", &merged.PromiscClients, want.PromiscClients))
	collect(mergePolicy("promisc_trunk_host", &merged.PromiscTrunkHost, want.PromiscTrunkHost))
	collect(mergePolicy("promisc_trunk_wire", &merged.PromiscTrunkWire, want.PromiscTrunkWire))
	collect(mergePolicy("if_promisc", &merged.IfPromisc, want.IfPromisc))
	collect(mergePolicy("trunk_host", &merged.TrunkHost, want.TrunkHost))
	collect(mergePolicy("trunk_wire", &merged.TrunkWire, want.TrunkWire))
	merged.SharedMacOnWire = merged.SharedMacOnWire || want.SharedMacOnWire

	trunk := n.trunk
	if req.Trunk != nil {
		switch have, t := n.trunk.Type(), req.Trunk.Type(); {
		case t == abi.TrunkNone || t == abi.TrunkWhatever:
		case have == abi.TrunkNone || have == abi.TrunkWhatever:
			trunk = req.Trunk
		case have != t || n.trunk.Name() != req.Trunk.Name():
			collect(serrors.JoinNoStack(authority.ErrAccessDenied, nil,
				"reason", "incompatible trunk", "trunk", n.trunk.Type(),
				"trunk_name", n.trunk.Name(), "requested", t,
				"requested_name", req.Trunk.Name()))
		}
	}
	if err := errs.ToError(); err != nil {
		return serrors.Wrap("joining network", err, "network", n.name)
	}
	n.policies = merged
	n.trunk = trunk
	return nil
}

func mergePolicy[T ~uint8](name string, have *abi.Policy[T], want abi.Policy[T]) error {
	switch {
	case want.Value == 0:
		return nil
	case have.Value == 0:
		*have = want
		return nil
	case have.Value != want.Value && (have.Fixed || want.Fixed):
		return serrors.JoinNoStack(authority.ErrAccessDenied, nil,
			"policy", name, "network_policy", *have, "requested", want)
	}
	have.Fixed = have.Fixed || want.Fixed
	return nil
}

func (n *network) add(p *port) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ports[p.handle] = p
}

// remove removes p and the addresses learned on it. It returns the number
// of remaining ports.
func (n *network) remove(p *port) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.ports, p.handle)
	for mac, item := range n.macs.Items() {
		if item.Object.(abi.Handle) == p.handle {
			n.macs.Delete(mac)
		}
	}
	n.macs.DeleteExpired()
	metrics.GaugeSet(n.metrics.learned(n.name), float64(n.macs.ItemCount()))
	return len(n.ports)
}

// promiscAllowed reports whether the policies let a client see frames not
// addressed to it.
func (n *network) promiscAllowed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.promiscAllowedLocked()
}

func (n *network) promiscAllowedLocked() bool {
	return n.policies.PromiscClients.Value != abi.PromiscDeny &&
		n.policies.IfPromisc.Value != abi.IfPromiscDeny
}

// setMac registers the address of an interface. It never expires.
func (n *network) setMac(p *port, mac net.HardwareAddr) {
	n.macs.Set(mac.String(), p.handle, cache.NoExpiration)
	metrics.GaugeSet(n.metrics.learned(n.name), float64(n.macs.ItemCount()))
}

func (n *network) learn(src net.HardwareAddr, p *port) {
	if isGroup(src) {
		return
	}
	key := src.String()
	if v, ok := n.macs.Get(key); ok && v.(abi.Handle) == p.handle {
		return
	}
	n.macs.SetDefault(key, p.handle)
	metrics.GaugeSet(n.metrics.learned(n.name), float64(n.macs.ItemCount()))
}

func isGroup(mac net.HardwareAddr) bool {
	return len(mac) > 0 && mac[0]&0x01 != 0
}

// forward delivers a frame sent on src. Unicast frames to a known address go
// to the port the address was learned on, everything else is flooded to the
// active ports. Promiscuous ports get a copy of every frame.
func (n *network) forward(src *port, frame []byte, desc *gso.Descriptor) {
	if !n.linkUp.Load() {
		metrics.CounterInc(n.metrics.dropped(n.name, reasonLink))
		return
	}
	var eth ethernet.Frame
	if err := eth.UnmarshalBinary(frame); err != nil {
		n.logger.Debug("Dropping malformed frame", "handle", src.handle, "err", err)
		metrics.CounterInc(n.metrics.dropped(n.name, reasonBad))
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	n.learn(eth.Source, src)

	var to *port
	flood := isGroup(eth.Destination)
	if !flood {
		if v, ok := n.macs.Get(eth.Destination.String()); ok {
			to = n.ports[v.(abi.Handle)]
		} else {
			flood = true
		}
	}

	promisc := n.promiscAllowedLocked()
	delivered := 0
	for _, p := range n.ports {
		if p == src || !p.active.Load() {
			continue
		}
		kind := ""
		switch {
		case flood:
			kind = kindFlood
		case p == to:
			kind = kindUnicast
		case promisc && p.promisc.Load():
			kind = kindPromisc
		default:
			continue
		}
		if err := p.deliver(frame, desc); err != nil {
			n.logger.Debug("Receiving interface full, dropping frame copy",
				"handle", p.handle, "err", err)
			metrics.CounterInc(n.metrics.dropped(n.name, reasonNoSpace))
			continue
		}
		metrics.CounterInc(n.metrics.forwarded(n.name, kind))
		delivered++
	}
	if delivered == 0 {
		metrics.CounterInc(n.metrics.dropped(n.name, reasonNoPeer))
	}
}
