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
	"context"
	"net"
	"sync"
	"time"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// forwardQueueLen is the capacity of the event queue of a socket session.
// Events beyond it are dropped.
const forwardQueueLen = 64

var _ authority.Authority = (*Session)(nil)

// Session is a client of the switch. Handles are only valid in the session
// that opened them. Session implements authority.Authority, so that drivers
// can attach to a switch in the same process; the socket server runs one
// session per connection.
//
// The ring buffer returned by MapBufferPointers is the switch's own view and
// must not be used after the handle is closed.
type Session struct {
	sw     *Switch
	logger log.Logger
	events authority.EventMux
	// forward gets every event of a socket session instead of events.
	forward chan authority.Event

	mu     sync.Mutex
	ports  map[abi.Handle]*port
	closed bool
}

// NewSession starts a session.
func (s *Switch) NewSession() *Session {
	return s.newSession(nil)
}

func (s *Switch) newSession(forward chan authority.Event) *Session {
	sess := &Session{
		sw:      s,
		logger:  s.logger,
		forward: forward,
		ports:   make(map[abi.Handle]*port),
	}
	s.addSession(sess)
	return sess
}

func (s *Session) Open(_ context.Context, req abi.OpenRequest) (abi.OpenReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return abi.OpenReply{}, authority.ErrClosed
	}
	p, gsoCapable, err := s.sw.open(s, req)
	if err != nil {
		return abi.OpenReply{}, err
	}
	s.ports[p.handle] = p
	if s.forward == nil {
		s.events.Subscribe(p.handle)
	}
	return abi.OpenReply{Handle: p.handle, GsoCapable: gsoCapable}, nil
}

func (s *Session) Close(_ context.Context, h abi.Handle) error {
	p, err := s.sw.port(s, h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.ports, h)
	s.mu.Unlock()
	s.sw.closePort(p)
	s.events.Remove(h)
	return nil
}

func (s *Session) Send(_ context.Context, h abi.Handle) error {
	p, err := s.sw.port(s, h)
	if err != nil {
		return err
	}
	return p.process()
}

func (s *Session) Wait(ctx context.Context, h abi.Handle, timeout time.Duration) error {
	p, err := s.sw.port(s, h)
	if err != nil {
		return err
	}
	return p.wait(ctx, timeout)
}

func (s *Session) AbortWait(_ context.Context, h abi.Handle) error {
	p, err := s.sw.port(s, h)
	if err != nil {
		return err
	}
	p.abortWait()
	return nil
}

// SetPromiscuous records the promiscuous mode of the interface. It only
// takes effect if the network policies allow promiscuous clients.
func (s *Session) SetPromiscuous(_ context.Context, h abi.Handle, on bool) error {
	p, err := s.sw.port(s, h)
	if err != nil {
		return err
	}
	if p.promisc.Swap(on) != on {
		s.logger.Debug("Interface promiscuous mode changed", "handle", h, "on", on,
			"effective", on && p.net.promiscAllowed())
	}
	return nil
}

// SetActive activates the interface. Inactive interfaces receive nothing and
// their frames are dropped.
func (s *Session) SetActive(_ context.Context, h abi.Handle, active bool) error {
	p, err := s.sw.port(s, h)
	if err != nil {
		return err
	}
	if p.active.Swap(active) != active {
		s.logger.Debug("Interface activity changed", "handle", h, "active", active)
	}
	return nil
}

func (s *Session) SetMacAddress(_ context.Context, h abi.Handle, mac net.HardwareAddr) error {
	p, err := s.sw.port(s, h)
	if err != nil {
		return err
	}
	if len(mac) != 6 || isGroup(mac) {
		return serrors.JoinNoStack(authority.ErrInvalidParameter, nil, "mac", mac)
	}
	p.net.setMac(p, mac)
	return nil
}

func (s *Session) MapBufferPointers(_ context.Context, h abi.Handle) (*ring.Buffer, error) {
	p, err := s.sw.port(s, h)
	if err != nil {
		return nil, err
	}
	return p.buf, nil
}

// BufferPointers describes the shared memory segment of the interface. It
// fails with ErrNotFound if the switch keeps its ring buffers on the heap.
func (s *Session) BufferPointers(h abi.Handle) (abi.BufferPointersReply, error) {
	p, err := s.sw.port(s, h)
	if err != nil {
		return abi.BufferPointersReply{}, err
	}
	if p.seg == nil {
		return abi.BufferPointersReply{}, serrors.JoinNoStack(authority.ErrNotFound, nil,
			"reason", "ring buffer not shared", "handle", h)
	}
	return abi.BufferPointersReply{
		Path:    p.seg.Path(),
		Size:    uint32(len(p.buf.Bytes())),
		SendCap: uint32(p.buf.Send.Capacity()),
		RecvCap: uint32(p.buf.Recv.Capacity()),
	}, nil
}

func (s *Session) Events(h abi.Handle) <-chan authority.Event {
	return s.events.Subscribe(h)
}

func (s *Session) notify(ev authority.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	dropped := false
	if s.forward != nil {
		select {
		case s.forward <- ev:
		default:
			dropped = true
		}
	} else {
		dropped = !s.events.Publish(ev)
	}
	if dropped {
		s.logger.Info("Dropping event", "handle", ev.Handle, "kind", ev.Kind)
	}
}

// Detach closes every interface of the session and its event channels.
func (s *Session) Detach() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ports := make([]*port, 0, len(s.ports))
	for h, p := range s.ports {
		ports = append(ports, p)
		delete(s.ports, h)
	}
	if s.forward != nil {
		close(s.forward)
	}
	s.events.Close()
	s.mu.Unlock()

	for _, p := range ports {
		s.sw.closePort(p)
	}
	s.sw.removeSession(s)
}
