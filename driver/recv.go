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
	"time"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/metrics"
)

// recvBufLen fits the largest segment a descriptor can describe.
const recvBufLen = 1 << 16

func (d *Driver) recvRunning() bool {
	return d.State() == Running
}

// runReceiver is the receive goroutine. While running, it delivers the
// records of the Recv section and waits on the switch when the section is
// empty. While suspended, it sleeps until resumed.
func (d *Driver) runReceiver() {
	defer close(d.recvDone)
	d.recvBuf = make([]byte, recvBufLen)
	for {
		switch d.State() {
		case Terminate:
			return
		case Suspended:
			select {
			case <-d.recvWake:
			case <-d.stop:
				return
			}
			continue
		}

		d.deliver()
		if !d.recvRunning() || !d.buf.Recv.Empty() {
			continue
		}
		err := d.auth.Wait(d.ctx, d.handle, RingWaitTimeout)
		switch {
		case err == nil,
			errors.Is(err, authority.ErrTimeout),
			errors.Is(err, authority.ErrInterrupted):
		case d.ctx.Err() != nil:
			return
		default:
			d.authError("wait", err)
			select {
			case <-time.After(authorityBackoff):
			case <-d.stop:
				return
			}
		}
	}
}

// deliver hands the records of the Recv section to the device model until
// the section is empty or the receive state changes.
func (d *Driver) deliver() {
	recv := d.buf.Recv
	for d.recvRunning() {
		rec, ok, err := recv.Peek()
		if err != nil {
			d.logger.Error("Recv section corrupt, dropping its content", "err", err)
			d.dropRx(reasonBadFrame)
			d.stats.rxBadFrames.Add(1)
			d.recvSeg = 0
			recv.Reset()
			return
		}
		if !ok {
			return
		}
		if !d.deliverRecord(rec) {
			return
		}
		if err := recv.Skip(); err != nil {
			d.logger.Error("Skipping record failed", "err", err)
			recv.Reset()
			return
		}
	}
}

// deliverRecord delivers one record. It returns false if the delivery was
// interrupted by a state change, in which case the record stays at the head
// of the section.
func (d *Driver) deliverRecord(rec ring.Record) bool {
	switch rec.Type {
	case ring.TypePadding:
		return true
	case ring.TypeFrame:
		if d.linkIsDown() {
			d.dropRx(reasonLinkDown)
			return true
		}
		if !d.waitReceiveAvail() {
			return false
		}
		d.receive(rec.Frame())
		return true
	case ring.TypeGsoFrame:
		if d.linkIsDown() {
			d.dropRx(reasonLinkDown)
			d.recvSeg = 0
			return true
		}
		return d.deliverGso(rec)
	default:
		d.logger.Debug("Dropping record of unknown type", "type", rec.Type)
		d.badFrame()
		return true
	}
}

// deliverGso delivers a GSO frame in one piece to a GsoReceiver, or carved
// into segments otherwise. Carving resumes at the first undelivered segment
// after an interruption.
func (d *Driver) deliverGso(rec ring.Record) bool {
	frame := rec.Frame()
	desc, err := rec.Gso()
	if err == nil {
		err = desc.ValidateFrame(frame)
	}
	if err != nil {
		d.logger.Debug("Dropping invalid gso frame", "err", err)
		d.badFrame()
		d.recvSeg = 0
		return true
	}
	if d.gsoRecv != nil {
		if !d.waitReceiveAvail() {
			return false
		}
		if err := d.gsoRecv.ReceiveGso(frame, desc); err != nil {
			d.dropRx(reasonDevice)
			return true
		}
		d.countRx(len(frame))
		return true
	}
	count := desc.SegmentCount(len(frame))
	for ; d.recvSeg < count; d.recvSeg++ {
		if !d.waitReceiveAvail() {
			return false
		}
		n, err := gso.Carve(frame, desc, d.recvSeg, d.recvBuf)
		if err != nil {
			d.logger.Debug("Carving gso frame failed", "err", err, "segment", d.recvSeg)
			d.badFrame()
			break
		}
		d.receive(d.recvBuf[:n])
	}
	d.recvSeg = 0
	return true
}

// waitReceiveAvail polls the device model once and then waits in slices, so
// that a state change is noticed within one slice.
func (d *Driver) waitReceiveAvail() bool {
	if d.dev.WaitReceiveAvail(0) == nil {
		return true
	}
	for d.recvRunning() {
		if d.dev.WaitReceiveAvail(d.cfg.RecvWaitSlice) == nil {
			return d.recvRunning()
		}
	}
	return false
}

func (d *Driver) receive(frame []byte) {
	if err := d.dev.Receive(frame); err != nil {
		d.dropRx(reasonDevice)
		return
	}
	d.countRx(len(frame))
}

func (d *Driver) countRx(n int) {
	d.stats.rxFrames.Add(1)
	d.stats.rxBytes.Add(uint64(n))
	metrics.CounterInc(d.metrics.rxFrames)
	metrics.CounterAdd(d.metrics.rxBytes, float64(n))
}

func (d *Driver) badFrame() {
	d.stats.rxBadFrames.Add(1)
	metrics.CounterInc(d.metrics.dropped(dirRx, reasonBadFrame))
}

func (d *Driver) dropRx(reason string) {
	d.stats.rxDropped.Add(1)
	metrics.CounterInc(d.metrics.dropped(dirRx, reason))
}
