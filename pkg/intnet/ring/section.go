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

package ring

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

var (
	// ErrBusy indicates that the section currently has not enough free space.
	ErrBusy = errors.New("ring section busy")
	// ErrZeroLength is returned when allocating an empty frame.
	ErrZeroLength = errors.New("zero length frame")
	// ErrTooLarge is returned for frames that can never fit into the section.
	ErrTooLarge = errors.New("frame exceeds section capacity")
	// ErrAllocPending is returned when allocating while another allocation
	// has been neither committed nor discarded.
	ErrAllocPending = errors.New("allocation pending")
	// ErrStaleFrame is returned when committing or discarding a frame that is
	// not the outstanding allocation.
	ErrStaleFrame = errors.New("stale frame handle")
	// ErrInvalidLength is returned when committing with a length outside the
	// reserved range.
	ErrInvalidLength = errors.New("invalid frame length")
	// ErrCorrupt indicates a record header that does not fit the section.
	ErrCorrupt = errors.New("corrupt ring section")
)

// Stats are the producer and consumer counters of one section view.
type Stats struct {
	// Frames and Bytes count committed Frame and GsoFrame records.
	Frames uint64
	Bytes  uint64
	// Overflows counts allocations rejected with ErrBusy.
	Overflows uint64
	// Discarded counts allocations turned into padding.
	Discarded uint64
	// Consumed counts records skipped by the reader, padding excluded.
	Consumed uint64
}

// Section is one direction of a Buffer. Producer methods (Allocate, Commit,
// Discard, Write) must not be called concurrently with each other, and
// consumer methods (Peek, Skip, Reset) must not be called concurrently with
// each other. A producer and a consumer may run concurrently.
type Section struct {
	name     string
	data     []byte
	capacity uint32
	readX    *uint32
	writeCom *uint32
	writeInt *uint32

	// Producer state of this view.
	pending bool
	pendOff uint32
	pendLen uint32
	pendGso bool

	frames    atomic.Uint64
	bytes     atomic.Uint64
	overflows atomic.Uint64
	discarded atomic.Uint64
	consumed  atomic.Uint64
}

func newSection(name string, mem []byte, ctl int, data []byte) *Section {
	return &Section{
		name:     name,
		data:     data,
		capacity: uint32(len(data)),
		readX:    (*uint32)(unsafe.Pointer(&mem[ctl+ctlReadX])),
		writeCom: (*uint32)(unsafe.Pointer(&mem[ctl+ctlWriteCom])),
		writeInt: (*uint32)(unsafe.Pointer(&mem[ctl+ctlWriteInt])),
	}
}

// Frame is an allocated, not yet committed record. Data is the frame area
// inside the section; it stays valid until the frame is committed or
// discarded.
type Frame struct {
	Data []byte
	off  uint32
	gso  bool
}

// Capacity returns the size of the data area in bytes.
func (s *Section) Capacity() int {
	return int(s.capacity)
}

// MaxFrame returns the largest frame length Allocate accepts without a GSO
// descriptor. Records are limited to half the section so that an empty
// section accepts any record regardless of where its offsets stand.
func (s *Section) MaxFrame() int {
	return s.maxRecord() - HdrLen
}

func (s *Section) maxRecord() int {
	return ((int(s.capacity) - Alignment) / 2) &^ (Alignment - 1)
}

// Empty reports whether the reader has consumed every committed record.
func (s *Section) Empty() bool {
	return atomic.LoadUint32(s.readX) == atomic.LoadUint32(s.writeCom)
}

// Used returns the number of bytes occupied by committed or reserved records.
func (s *Section) Used() int {
	r, w := atomic.LoadUint32(s.readX), atomic.LoadUint32(s.writeInt)
	if w >= r {
		return int(w - r)
	}
	return int(s.capacity - r + w)
}

// Free returns the number of bytes that may still be reserved, ignoring
// fragmentation at the physical end of the data area.
func (s *Section) Free() int {
	return int(s.capacity) - Alignment - s.Used()
}

// Stats returns a snapshot of the counters of this view.
func (s *Section) Stats() Stats {
	return Stats{
		Frames:    s.frames.Load(),
		Bytes:     s.bytes.Load(),
		Overflows: s.overflows.Load(),
		Discarded: s.discarded.Load(),
		Consumed:  s.consumed.Load(),
	}
}

// Allocate reserves a record for a frame of n bytes. If d is not nil, the
// record is a GSO frame and the encoded descriptor is stored in front of the
// frame. The reservation is invisible to the reader until it is committed.
//
// When the record does not fit between the write position and the physical
// end of the section but fits at the start, the tail is published as padding
// and the record is placed at offset zero.
func (s *Section) Allocate(n int, d *gso.Descriptor) (Frame, error) {
	if n <= 0 {
		return Frame{}, ErrZeroLength
	}
	if s.pending {
		return Frame{}, ErrAllocPending
	}
	payload := n
	if d != nil {
		payload += gso.DescriptorLen
	}
	need := recordSize(payload)
	if need > s.maxRecord() {
		return Frame{}, serrors.JoinNoStack(ErrTooLarge, nil,
			"section", s.name, "len", n, "capacity", s.capacity)
	}
	w := atomic.LoadUint32(s.writeInt)
	r := atomic.LoadUint32(s.readX)
	off, wrap, ok := s.place(w, r, uint32(need))
	if !ok {
		s.overflows.Add(1)
		return Frame{}, ErrBusy
	}
	if wrap {
		putHeader(s.data[w:], TypePadding, s.capacity-w-HdrLen)
		atomic.StoreUint32(s.writeInt, 0)
		atomic.StoreUint32(s.writeCom, 0)
	}
	atomic.StoreUint32(s.writeInt, off+uint32(need))
	s.pending, s.pendOff, s.pendLen, s.pendGso = true, off, uint32(payload), d != nil

	start := off + HdrLen
	if d != nil {
		d.Encode(s.data[start:])
		start += gso.DescriptorLen
	}
	return Frame{
		Data: s.data[start : start+uint32(n) : start+uint32(n)],
		off:  off,
		gso:  d != nil,
	}, nil
}

// place finds the offset for a record of need bytes given the reserved write
// offset w and the read offset r. The writer never moves onto the reader, so
// at least Alignment bytes stay free at all times.
func (s *Section) place(w, r, need uint32) (off uint32, wrap bool, ok bool) {
	if r > w {
		return w, false, w+need+Alignment <= r
	}
	end := s.capacity
	if r == 0 {
		end -= Alignment
	}
	if w+need <= end {
		return w, false, true
	}
	if r > 0 && need+Alignment <= r {
		return 0, true, true
	}
	return 0, false, false
}

// Commit publishes the frame with its final length n, which must not exceed
// the allocated length. Unused reserved space is returned to the section.
func (s *Section) Commit(f Frame, n int) error {
	if err := s.checkPending(f); err != nil {
		return err
	}
	if n <= 0 || n > len(f.Data) {
		return serrors.JoinNoStack(ErrInvalidLength, nil, "len", n, "reserved", len(f.Data))
	}
	typ, payload := TypeFrame, uint32(n)
	if f.gso {
		typ, payload = TypeGsoFrame, payload+gso.DescriptorLen
	}
	s.publish(f.off, typ, payload)
	s.frames.Add(1)
	s.bytes.Add(uint64(n))
	return nil
}

// Discard publishes the reservation of f as padding, so that the reader
// skips it.
func (s *Section) Discard(f Frame) error {
	if err := s.checkPending(f); err != nil {
		return err
	}
	s.publish(f.off, TypePadding, s.pendLen)
	s.discarded.Add(1)
	return nil
}

// Write allocates, fills and commits a frame in one step.
func (s *Section) Write(frame []byte, d *gso.Descriptor) error {
	f, err := s.Allocate(len(frame), d)
	if err != nil {
		return err
	}
	copy(f.Data, frame)
	return s.Commit(f, len(frame))
}

func (s *Section) checkPending(f Frame) error {
	if !s.pending || f.off != s.pendOff || f.gso != s.pendGso || f.Data == nil {
		return serrors.JoinNoStack(ErrStaleFrame, nil, "section", s.name, "off", f.off)
	}
	return nil
}

func (s *Section) publish(off uint32, typ Type, payload uint32) {
	putHeader(s.data[off:], typ, payload)
	next := off + uint32(recordSize(int(payload)))
	if next == s.capacity {
		next = 0
	}
	atomic.StoreUint32(s.writeInt, next)
	atomic.StoreUint32(s.writeCom, next)
	s.pending = false
}

// Peek returns the record at the head of the section without consuming it.
// The second return value is false if the section is empty. Padding records
// are returned like any other record.
func (s *Section) Peek() (Record, bool, error) {
	r := atomic.LoadUint32(s.readX)
	if r == atomic.LoadUint32(s.writeCom) {
		return Record{}, false, nil
	}
	rec, err := s.recordAt(r)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Skip consumes the record at the head of the section.
func (s *Section) Skip() error {
	r := atomic.LoadUint32(s.readX)
	if r == atomic.LoadUint32(s.writeCom) {
		return nil
	}
	rec, err := s.recordAt(r)
	if err != nil {
		return err
	}
	next := r + rec.size
	if next == s.capacity {
		next = 0
	}
	if rec.Type != TypePadding {
		s.consumed.Add(1)
	}
	atomic.StoreUint32(s.readX, next)
	return nil
}

// Reset drops every committed record. It is the reader's way out of a
// corrupt section.
func (s *Section) Reset() {
	atomic.StoreUint32(s.readX, atomic.LoadUint32(s.writeCom))
}

func (s *Section) recordAt(off uint32) (Record, error) {
	if off%Alignment != 0 || off+HdrLen > s.capacity {
		return Record{}, serrors.JoinNoStack(ErrCorrupt, nil, "section", s.name, "off", off)
	}
	typ, length := getHeader(s.data[off:])
	size := uint64(recordSize(int(length)))
	if uint64(off)+size > uint64(s.capacity) {
		return Record{}, serrors.JoinNoStack(ErrCorrupt, nil,
			"section", s.name, "off", off, "len", length)
	}
	return Record{
		Type:    typ,
		Payload: s.data[off+HdrLen : off+HdrLen+length : off+HdrLen+length],
		size:    uint32(size),
	}, nil
}
