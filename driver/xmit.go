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
	"errors"

	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/metrics"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// SGBuf is a transmit buffer. The caller fills Data and may shorten it
// before SendBuf. The buffer belongs to the caller until SendBuf or FreeBuf.
type SGBuf struct {
	// Data is the frame. It aliases the Send section unless the buffer
	// holds a GSO frame that is carved on send.
	Data []byte
	// Gso describes Data if it is a GSO frame.
	Gso *gso.Descriptor

	frame   ring.Frame
	scratch bool
	size    int
	done    bool
}

// Buffers allocates, sends and frees transmit buffers under the xmit lock.
type Buffers interface {
	AllocBuf(size int, desc *gso.Descriptor) (*SGBuf, error)
	FreeBuf(b *SGBuf) error
	SendBuf(b *SGBuf, onWorker bool) error
}

var _ Buffers = (*Tx)(nil)

// Tx is a held xmit lock. Only the goroutine that got it from BeginXmit may
// use it, and it is void once End returns.
type Tx struct {
	d        *Driver
	onWorker bool
}

// BeginXmit takes the xmit lock without blocking. It returns ErrRetry if the
// lock is held; in that case a goroutine other than the xmit worker gets the
// worker to call XmitPending once the lock is free.
func (d *Driver) BeginXmit(onWorker bool) (*Tx, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if !d.connected {
		return nil, ErrNotConnected
	}
	if !d.xmit.TryLock() {
		d.stats.txContention.Add(1)
		metrics.CounterInc(d.metrics.contention)
		if !onWorker {
			d.signalWorker()
		}
		return nil, ErrRetry
	}
	return d.hold(onWorker), nil
}

// lockXmit takes the xmit lock, blocking if necessary.
func (d *Driver) lockXmit(onWorker bool) *Tx {
	d.xmit.Lock()
	return d.hold(onWorker)
}

func (d *Driver) hold(onWorker bool) *Tx {
	tx := &Tx{d: d, onWorker: onWorker}
	d.xmitTx.Store(tx)
	return tx
}

// held reports whether tx is the current holder of the xmit lock.
func (tx *Tx) held() bool {
	return tx != nil && tx.d.xmitTx.Load() == tx
}

// End releases the xmit lock. An allocated buffer that was neither sent nor
// freed is discarded. End on a void Tx leaves the lock alone.
func (tx *Tx) End() {
	if !tx.held() {
		return
	}
	d := tx.d
	if d.pending != nil {
		d.logger.Debug("Discarding buffer left at end of xmit")
		d.freeBuf(d.pending)
	}
	d.xmitTx.Store(nil)
	d.xmit.Unlock()
}

// Xmit runs fn with the xmit lock held.
func (d *Driver) Xmit(onWorker bool, fn func(Buffers) error) error {
	tx, err := d.BeginXmit(onWorker)
	if err != nil {
		return err
	}
	defer tx.End()
	return fn(tx)
}

// AllocBuf allocates a buffer for a frame of size bytes. With a GSO
// descriptor and a switch that cannot take GSO frames, the buffer is scratch
// memory of at most gso.MaxFrameLen bytes that SendBuf carves into segments.
//
// If the Send section is full and large enough to hold the frame twice, the
// section is drained once and the allocation retried. ErrOutOfMemory is
// returned if there is still no room.
func (tx *Tx) AllocBuf(size int, desc *gso.Descriptor) (*SGBuf, error) {
	if !tx.held() {
		return nil, ErrXmitNotLocked
	}
	d := tx.d
	if d.pending != nil {
		return nil, ring.ErrAllocPending
	}
	if desc != nil && !d.gsoCapable.Load() {
		if size <= 0 {
			return nil, ring.ErrZeroLength
		}
		if size > gso.MaxFrameLen {
			return nil, serrors.JoinNoStack(ErrOutOfMemory, nil,
				"size", size, "max", gso.MaxFrameLen)
		}
		if cap(d.scratch) < size {
			d.scratch = make([]byte, size)
		}
		b := &SGBuf{Data: d.scratch[:size], Gso: desc, scratch: true, size: size}
		d.pending = b
		return b, nil
	}
	f, err := d.allocate(size, desc)
	if err != nil {
		return nil, err
	}
	b := &SGBuf{Data: f.Data, Gso: desc, frame: f, size: size}
	d.pending = b
	return b, nil
}

// allocate reserves a record in the Send section, draining once on
// overflow.
func (d *Driver) allocate(size int, desc *gso.Descriptor) (ring.Frame, error) {
	send := d.buf.Send
	f, err := send.Allocate(size, desc)
	if !errors.Is(err, ring.ErrBusy) {
		return f, err
	}
	need := ring.HdrLen + size
	if desc != nil {
		need += gso.DescriptorLen
	}
	if send.Capacity() >= 2*need {
		d.drain()
		if f, err = send.Allocate(size, desc); err == nil {
			return f, nil
		}
	}
	d.stats.txOverflows.Add(1)
	return ring.Frame{}, serrors.JoinNoStack(ErrOutOfMemory, err,
		"size", size, "free", send.Free())
}

// FreeBuf releases a buffer without sending it.
func (tx *Tx) FreeBuf(b *SGBuf) error {
	if !tx.held() {
		return ErrXmitNotLocked
	}
	if err := tx.d.checkBuf(b); err != nil {
		return err
	}
	tx.d.freeBuf(b)
	return nil
}

func (d *Driver) freeBuf(b *SGBuf) {
	if !b.scratch {
		d.discard(b.frame)
	}
	b.done = true
	d.pending = nil
}

func (d *Driver) discard(f ring.Frame) {
	if err := d.buf.Send.Discard(f); err != nil {
		d.logger.Error("Discarding send buffer failed", "err", err)
	}
}

func (d *Driver) checkBuf(b *SGBuf) error {
	if b == nil || b.done || b != d.pending {
		return ErrBufferUsed
	}
	return nil
}

// SendBuf sends a filled buffer and drains the Send section, inline or on
// the xmit worker. With the link down, the frame is dropped.
func (tx *Tx) SendBuf(b *SGBuf, onWorker bool) error {
	if !tx.held() {
		return ErrXmitNotLocked
	}
	d := tx.d
	if err := d.checkBuf(b); err != nil {
		return err
	}
	if len(b.Data) == 0 || len(b.Data) > b.size {
		return serrors.JoinNoStack(ring.ErrInvalidLength, nil,
			"len", len(b.Data), "allocated", b.size)
	}
	if d.linkIsDown() {
		d.freeBuf(b)
		d.dropTx(reasonLinkDown, 1)
		return nil
	}
	if b.Gso != nil {
		if err := b.Gso.Validate(len(b.Data)); err != nil {
			d.freeBuf(b)
			d.dropTx(reasonBadFrame, 1)
			return serrors.Wrap("invalid gso frame", err)
		}
	}

	var err error
	if b.scratch {
		err = d.sendCarved(b)
	} else {
		if err = d.buf.Send.Commit(b.frame, len(b.Data)); err == nil {
			d.countTx(len(b.Data))
		}
		b.done = true
		d.pending = nil
	}

	if d.cfg.XmitOnWorker && !onWorker && !tx.onWorker {
		d.processRing.Store(true)
		d.signalWorker()
	} else {
		d.drain()
	}
	return err
}

// sendCarved commits every segment of a GSO frame held in scratch memory as
// a frame of its own.
func (d *Driver) sendCarved(b *SGBuf) error {
	b.done = true
	d.pending = nil
	desc := *b.Gso
	count := desc.SegmentCount(len(b.Data))
	for i := range count {
		n := desc.SegmentLen(len(b.Data), i)
		f, err := d.allocate(n, nil)
		if err != nil {
			d.dropTx(reasonNoBuffer, count-i)
			return serrors.JoinNoStack(ErrNoBufferSpace, err,
				"segment", i, "segments", count)
		}
		if _, err := gso.Carve(b.Data, desc, i, f.Data); err != nil {
			d.discard(f)
			d.dropTx(reasonBadFrame, count-i)
			return serrors.Wrap("carving gso frame", err, "segment", i)
		}
		if err := d.buf.Send.Commit(f, n); err != nil {
			d.discard(f)
			d.dropTx(reasonBadFrame, count-i)
			return serrors.Wrap("committing gso segment", err,
				"segment", i, "segments", count)
		}
		d.countTx(n)
	}
	d.stats.txGsoCarved.Add(1)
	return nil
}

// drain asks the switch to process the Send section.
func (d *Driver) drain() {
	if err := d.auth.Send(d.ctx, d.handle); err != nil {
		d.authError("send", err)
	}
}

func (d *Driver) countTx(n int) {
	d.stats.txFrames.Add(1)
	d.stats.txBytes.Add(uint64(n))
	metrics.CounterInc(d.metrics.txFrames)
	metrics.CounterAdd(d.metrics.txBytes, float64(n))
}

func (d *Driver) dropTx(reason string, n int) {
	d.stats.txDropped.Add(uint64(n))
	metrics.CounterAdd(d.metrics.dropped(dirTx, reason), float64(n))
}
