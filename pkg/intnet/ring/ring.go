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

// Package ring implements the shared-memory ring buffer exchanged between an
// interface and the switch. A buffer holds two sections, Send and Recv. Each
// section is a circular byte area of tagged, length-prefixed records with a
// single producer and a single consumer.
//
// Layout of a buffer:
//
//	0                                                              64
//	+------+---------+--------+--------+--------+--------+---------+
//	|magic | version | sendOff| sendCap| recvOff| recvCap| controls|
//	+------+---------+--------+--------+--------+--------+---------+
//	| send data area (sendCap bytes)                               |
//	+--------------------------------------------------------------+
//	| recv data area (recvCap bytes)                               |
//	+--------------------------------------------------------------+
//
// The control words of a section are its read offset, its committed write
// offset and its internal (reserved) write offset. They are only accessed
// atomically.
package ring

import (
	"encoding/binary"
	"errors"
	"sync/atomic"
	"unsafe"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

const (
	// Magic identifies a formatted ring buffer.
	Magic uint32 = 0x494e5242
	// Version is the layout version written by Format.
	Version uint32 = 1
	// HeaderLen is the size of the buffer header preceding the data areas.
	HeaderLen = 64
	// MinCapacity is the smallest accepted section capacity.
	MinCapacity = 64
	// MaxCapacity is the largest accepted section capacity.
	MaxCapacity = 1 << 30
)

const (
	offMagic    = 0
	offVersion  = 4
	offSendOff  = 8
	offSendCap  = 12
	offRecvOff  = 16
	offRecvCap  = 20
	offSendCtl  = 24
	offRecvCtl  = 36
	ctlReadX    = 0
	ctlWriteCom = 4
	ctlWriteInt = 8
)

var (
	// ErrBadMagic indicates that a region does not hold a formatted buffer.
	ErrBadMagic = errors.New("bad ring buffer magic")
	// ErrBadLayout indicates inconsistent offsets or capacities in a buffer header.
	ErrBadLayout = errors.New("bad ring buffer layout")
	// ErrMisaligned indicates a memory region that is not 8-byte aligned.
	ErrMisaligned = errors.New("misaligned ring buffer memory")
)

var order = binary.NativeEndian

// Buffer is a ring buffer with a Send and a Recv section over a single
// memory region. The region is not owned: whoever created it unmaps it.
type Buffer struct {
	mem  []byte
	Send *Section
	Recv *Section
}

// Size returns the number of bytes a buffer with the given section
// capacities occupies. Capacities are rounded up to the record alignment.
func Size(sendCap, recvCap int) int {
	return HeaderLen + alignUp(sendCap) + alignUp(recvCap)
}

// New formats a buffer on freshly allocated heap memory.
func New(sendCap, recvCap int) (*Buffer, error) {
	return Format(Alloc(Size(sendCap, recvCap)), sendCap, recvCap)
}

// Alloc returns size bytes of zeroed, 8-byte aligned memory.
func Alloc(size int) []byte {
	words := make([]uint64, (size+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
}

// Format initializes mem as an empty buffer with the given capacities and
// returns a view on it.
func Format(mem []byte, sendCap, recvCap int) (*Buffer, error) {
	sendCap, recvCap = alignUp(sendCap), alignUp(recvCap)
	if err := checkCapacity(sendCap); err != nil {
		return nil, serrors.Wrap("send section", err)
	}
	if err := checkCapacity(recvCap); err != nil {
		return nil, serrors.Wrap("recv section", err)
	}
	if len(mem) < Size(sendCap, recvCap) {
		return nil, serrors.JoinNoStack(ErrBadLayout, nil,
			"have", len(mem), "want", Size(sendCap, recvCap))
	}
	if uintptr(unsafe.Pointer(&mem[0]))%8 != 0 {
		return nil, ErrMisaligned
	}
	clear(mem[:Size(sendCap, recvCap)])
	order.PutUint32(mem[offVersion:], Version)
	order.PutUint32(mem[offSendOff:], HeaderLen)
	order.PutUint32(mem[offSendCap:], uint32(sendCap))
	order.PutUint32(mem[offRecvOff:], uint32(HeaderLen+sendCap))
	order.PutUint32(mem[offRecvCap:], uint32(recvCap))
	// The magic goes last so that a concurrent Attach never sees a partial header.
	storeUint32(mem, offMagic, Magic)
	return Attach(mem)
}

// Attach validates the header of an already formatted region and returns a
// view on it. Several views may be attached to the same region, for example
// one per process.
func Attach(mem []byte) (*Buffer, error) {
	if len(mem) < HeaderLen {
		return nil, serrors.JoinNoStack(ErrBadLayout, nil, "size", len(mem))
	}
	if uintptr(unsafe.Pointer(&mem[0]))%8 != 0 {
		return nil, ErrMisaligned
	}
	if m := loadUint32(mem, offMagic); m != Magic {
		return nil, serrors.JoinNoStack(ErrBadMagic, nil, "magic", m)
	}
	if v := order.Uint32(mem[offVersion:]); v != Version {
		return nil, serrors.JoinNoStack(ErrBadLayout, nil, "version", v)
	}
	sendOff := int(order.Uint32(mem[offSendOff:]))
	sendCap := int(order.Uint32(mem[offSendCap:]))
	recvOff := int(order.Uint32(mem[offRecvOff:]))
	recvCap := int(order.Uint32(mem[offRecvCap:]))
	switch {
	case checkCapacity(sendCap) != nil || checkCapacity(recvCap) != nil,
		sendOff != HeaderLen,
		recvOff != sendOff+sendCap,
		recvOff+recvCap > len(mem):
		return nil, serrors.JoinNoStack(ErrBadLayout, nil,
			"send_off", sendOff, "send_cap", sendCap,
			"recv_off", recvOff, "recv_cap", recvCap, "size", len(mem))
	}
	return &Buffer{
		mem:  mem,
		Send: newSection("send", mem, offSendCtl, mem[sendOff:sendOff+sendCap]),
		Recv: newSection("recv", mem, offRecvCtl, mem[recvOff:recvOff+recvCap]),
	}, nil
}

// Bytes returns the underlying memory region.
func (b *Buffer) Bytes() []byte {
	return b.mem
}

func checkCapacity(c int) error {
	if c < MinCapacity || c > MaxCapacity {
		return serrors.JoinNoStack(ErrBadLayout, nil,
			"capacity", c, "min", MinCapacity, "max", MaxCapacity)
	}
	return nil
}

func alignUp(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

func loadUint32(mem []byte, off int) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&mem[off])))
}

func storeUint32(mem []byte, off int, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&mem[off])), v)
}
