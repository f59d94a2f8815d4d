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
	"sync"
	"sync/atomic"
	"time"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/metrics"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/private/shm"
)

// port is an open interface. The switch is the consumer of its Send section
// and the producer of its Recv section.
type port struct {
	handle abi.Handle
	net    *network
	owner  *Session
	buf    *ring.Buffer
	seg    *shm.Segment

	// sendMu serializes the consumer of the Send section, recvMu the
	// producer of the Recv section. Both guard closed.
	sendMu sync.Mutex
	recvMu sync.Mutex
	closed bool

	active  atomic.Bool
	promisc atomic.Bool

	sent, received, dropped atomic.Uint64

	ready chan struct{}
	abort chan struct{}
	done  chan struct{}
}

func newPort(h abi.Handle, n *network, owner *Session, buf *ring.Buffer,
	seg *shm.Segment) *port {

	return &port{
		handle: h,
		net:    n,
		owner:  owner,
		buf:    buf,
		seg:    seg,
		ready:  make(chan struct{}, 1),
		abort:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// process forwards every committed record of the Send section. Frames of
// inactive ports are consumed and dropped.
func (p *port) process() error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()
	if p.closed {
		return serrors.JoinNoStack(authority.ErrInvalidHandle, nil, "handle", p.handle)
	}
	send := p.buf.Send
	for {
		rec, ok, err := send.Peek()
		if err != nil {
			p.net.logger.Info("Send section corrupt, dropping its content",
				"handle", p.handle, "err", err)
			send.Reset()
			p.drop(reasonBad)
			return nil
		}
		if !ok {
			return nil
		}
		p.forward(rec)
		if err := send.Skip(); err != nil {
			send.Reset()
			return nil
		}
	}
}

func (p *port) forward(rec ring.Record) {
	switch rec.Type {
	case ring.TypePadding:
		return
	case ring.TypeFrame, ring.TypeGsoFrame:
	default:
		p.drop(reasonBad)
		return
	}
	if !p.active.Load() {
		p.drop(reasonIdle)
		return
	}
	frame := rec.Frame()
	var desc *gso.Descriptor
	if rec.Type == ring.TypeGsoFrame {
		d, err := rec.Gso()
		if err == nil {
			err = d.ValidateFrame(frame)
		}
		if err != nil {
			p.net.logger.Debug("Dropping invalid gso frame", "handle", p.handle, "err", err)
			p.drop(reasonBad)
			return
		}
		desc = &d
	}
	p.sent.Add(1)
	p.net.forward(p, frame, desc)
}

func (p *port) drop(reason string) {
	p.dropped.Add(1)
	metrics.CounterInc(p.net.metrics.dropped(p.net.name, reason))
}

// deliver writes a frame into the Recv section and wakes the waiter.
func (p *port) deliver(frame []byte, desc *gso.Descriptor) error {
	p.recvMu.Lock()
	if p.closed {
		p.recvMu.Unlock()
		return serrors.JoinNoStack(authority.ErrInvalidHandle, nil, "handle", p.handle)
	}
	err := p.buf.Recv.Write(frame, desc)
	p.recvMu.Unlock()
	if err != nil {
		p.dropped.Add(1)
		return err
	}
	p.received.Add(1)
	select {
	case p.ready <- struct{}{}:
	default:
	}
	return nil
}

// wait blocks until the Recv section holds records, the wait is aborted or
// the timeout expires.
func (p *port) wait(ctx context.Context, timeout time.Duration) error {
	p.recvMu.Lock()
	if p.closed {
		p.recvMu.Unlock()
		return serrors.JoinNoStack(authority.ErrInvalidHandle, nil, "handle", p.handle)
	}
	empty := p.buf.Recv.Empty()
	p.recvMu.Unlock()
	if !empty {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.ready:
		return nil
	case <-p.abort:
		return authority.ErrInterrupted
	case <-timer.C:
		return authority.ErrTimeout
	case <-p.done:
		return authority.ErrInterrupted
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *port) abortWait() {
	select {
	case p.abort <- struct{}{}:
	default:
	}
}

// close releases the ring buffer. Waiters return.
func (p *port) close() {
	p.sendMu.Lock()
	p.recvMu.Lock()
	if p.closed {
		p.recvMu.Unlock()
		p.sendMu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	p.recvMu.Unlock()
	p.sendMu.Unlock()
	if p.seg != nil {
		if err := p.seg.Close(); err != nil {
			p.net.logger.Info("Releasing ring buffer failed", "handle", p.handle, "err", err)
		}
	}
}
