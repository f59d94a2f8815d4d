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

// Package switchd is a minimal switch authority. It owns the networks and the
// ring buffers of their interfaces, forwards the frames committed to the Send
// sections into the Recv sections of the peers and learns the source MAC
// addresses of the frames it forwards.
//
// Clients talk to the switch through a Session, either in process or over
// the unix socket served by a Server.
package switchd

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/metrics"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/private/shm"
)

const (
	// DefaultMacTTL is the lifetime of a learned MAC address.
	DefaultMacTTL = 5 * time.Minute
	// DefaultSendSize and DefaultRecvSize are used for open requests that
	// leave the section sizes unset.
	DefaultSendSize = 200704
	DefaultRecvSize = 327680

	shmPrefix = "intnet"
)

// Config configures a Switch.
type Config struct {
	// ShmDir is the directory of the shared memory segments. If empty, ring
	// buffers live on the heap and can only be used in process.
	ShmDir string
	// MacTTL is the lifetime of learned addresses. DefaultMacTTL if zero.
	MacTTL time.Duration
	// GsoCapable announces that the switch accepts GSO frames.
	GsoCapable bool
	// Metrics are optional.
	Metrics *Metrics
}

// Switch is the switch authority.
type Switch struct {
	cfg    Config
	logger log.Logger

	mu         sync.Mutex
	networks   map[string]*network
	ports      map[abi.Handle]*port
	sessions   map[*Session]struct{}
	nextHandle abi.Handle
	gsoCapable bool
}

// New creates a switch without networks.
func New(ctx context.Context, cfg Config) *Switch {
	if cfg.MacTTL <= 0 {
		cfg.MacTTL = DefaultMacTTL
	}
	return &Switch{
		cfg:        cfg,
		logger:     log.FromCtx(ctx).New("component", "switch"),
		networks:   make(map[string]*network),
		ports:      make(map[abi.Handle]*port),
		sessions:   make(map[*Session]struct{}),
		gsoCapable: cfg.GsoCapable,
	}
}

func (s *Switch) open(owner *Session, req abi.OpenRequest) (*port, bool, error) {
	if req.Network == "" || len(req.Network) > abi.MaxNetworkName {
		return nil, false, serrors.JoinNoStack(authority.ErrInvalidParameter, nil,
			"network", req.Network)
	}
	sendCap, recvCap := int(req.SendSize), int(req.RecvSize)
	if sendCap == 0 {
		sendCap = DefaultSendSize
	}
	if recvCap == 0 {
		recvCap = DefaultRecvSize
	}
	for _, c := range []int{sendCap, recvCap} {
		if c < ring.MinCapacity || c > ring.MaxCapacity {
			return nil, false, serrors.JoinNoStack(authority.ErrInvalidParameter, nil,
				"send_size", req.SendSize, "recv_size", req.RecvSize)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.networks[req.Network]
	if !ok {
		n = newNetwork(req, s.cfg.MacTTL, s.cfg.Metrics, s.logger)
	} else if err := n.join(req); err != nil {
		return nil, false, err
	}

	s.nextHandle++
	h := s.nextHandle
	p, err := s.newPort(h, n, owner, sendCap, recvCap)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.networks[req.Network] = n
		s.logger.Info("Network created", "network", req.Network, "trunk", n.trunk.Type())
	}
	n.add(p)
	s.ports[h] = p
	metrics.GaugeAdd(s.cfg.Metrics.ports(req.Network), 1)
	s.logger.Debug("Interface opened", "network", req.Network, "handle", h,
		"send_cap", sendCap, "recv_cap", recvCap)
	return p, s.gsoCapable, nil
}

func (s *Switch) newPort(h abi.Handle, n *network, owner *Session,
	sendCap, recvCap int) (*port, error) {

	if s.cfg.ShmDir == "" {
		buf, err := ring.New(sendCap, recvCap)
		if err != nil {
			return nil, serrors.JoinNoStack(authority.ErrInvalidParameter, err)
		}
		return newPort(h, n, owner, buf, nil), nil
	}
	seg, err := shm.Create(s.cfg.ShmDir, shmPrefix, ring.Size(sendCap, recvCap))
	if err != nil {
		return nil, serrors.JoinNoStack(authority.ErrNoMemory, err, "dir", s.cfg.ShmDir)
	}
	buf, err := ring.Format(seg.Bytes(), sendCap, recvCap)
	if err != nil {
		seg.Close()
		return nil, serrors.JoinNoStack(authority.ErrInvalidParameter, err)
	}
	return newPort(h, n, owner, buf, seg), nil
}

// port returns the open port h of owner.
func (s *Switch) port(owner *Session, h abi.Handle) (*port, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ports[h]
	if !ok || p.owner != owner {
		return nil, serrors.JoinNoStack(authority.ErrInvalidHandle, nil, "handle", h)
	}
	return p, nil
}

// closePort removes the port from its network and releases its ring buffer.
// The last port of a network removes the network.
func (s *Switch) closePort(p *port) {
	s.mu.Lock()
	if s.ports[p.handle] != p {
		s.mu.Unlock()
		return
	}
	delete(s.ports, p.handle)
	n := p.net
	if n.remove(p) == 0 {
		delete(s.networks, n.name)
		s.logger.Info("Network removed", "network", n.name)
	}
	s.mu.Unlock()

	metrics.GaugeAdd(s.cfg.Metrics.ports(n.name), -1)
	p.close()
	s.logger.Debug("Interface closed", "network", n.name, "handle", p.handle)
}

func (s *Switch) addSession(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess] = struct{}{}
}

func (s *Switch) removeSession(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess)
}

// SetGsoCapable changes the GSO capability of the switch and notifies every
// open interface.
func (s *Switch) SetGsoCapable(capable bool) {
	s.mu.Lock()
	s.gsoCapable = capable
	ports := s.sortedPorts(nil)
	s.mu.Unlock()
	for _, p := range ports {
		p.owner.notify(authority.Event{
			Kind:       authority.DeviceChanged,
			Handle:     p.handle,
			GsoCapable: capable,
		})
	}
	s.logger.Info("Switch capabilities changed", "gso_capable", capable)
}

// SetLink changes the link state of a network. While the link is down the
// network forwards nothing, and its interfaces are told so.
func (s *Switch) SetLink(network string, up bool) error {
	s.mu.Lock()
	n, ok := s.networks[network]
	if !ok {
		s.mu.Unlock()
		return serrors.JoinNoStack(authority.ErrNotFound, nil, "network", network)
	}
	n.linkUp.Store(up)
	ports := s.sortedPorts(n)
	s.mu.Unlock()
	for _, p := range ports {
		p.owner.notify(authority.Event{
			Kind:   authority.LinkChanged,
			Handle: p.handle,
			LinkUp: up,
		})
	}
	s.logger.Info("Network link changed", "network", network, "up", up)
	return nil
}

// sortedPorts returns the ports of n, or of every network if n is nil, in
// handle order. s.mu must be held.
func (s *Switch) sortedPorts(n *network) []*port {
	var ports []*port
	for _, p := range s.ports {
		if n == nil || p.net == n {
			ports = append(ports, p)
		}
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].handle < ports[j].handle })
	return ports
}

// Close ends every session.
func (s *Switch) Close() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Detach()
	}
}
