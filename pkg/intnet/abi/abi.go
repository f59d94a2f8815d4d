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

// Package abi defines the messages exchanged between an interface driver and
// the switch authority.
//
// Every message starts with a fixed header:
//
//	 0               1               2               3
//	 0 1 2 3 4 5 6 7 0 1 2 3 4 5 6 7 0 1 2 3 4 5 6 7 0 1 2 3 4 5 6 7
//	+-------------------------------+-------------------------------+
//	|                             Magic                             |
//	+-------------------------------+-------------------------------+
//	|            Version            |               Op              |
//	+-------------------------------+-------------------------------+
//	|                          Request ID                           |
//	+-------------------------------+-------------------------------+
//	|                            Handle                             |
//	+-------------------------------+-------------------------------+
//	|                            Status                             |
//	+-------------------------------+-------------------------------+
//
// followed by an operation specific body. All fields are big endian. On a
// stream, messages are prefixed with their length as a 32 bit integer.
package abi

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

const (
	// Magic is the first word of every message.
	Magic uint32 = 0x494e544e
	// Version is the protocol version spoken by this package.
	Version uint16 = 1
	// HdrLen is the length of the message header.
	HdrLen = 20
	// MaxMessageLen bounds the size of a message on the wire.
	MaxMessageLen = 1 << 16
	// MaxNetworkName is the longest accepted network name.
	MaxNetworkName = 127
	// MaxTrunkName is the longest accepted trunk name.
	MaxTrunkName = 63
)

var order = binary.BigEndian

// Error messages.
var (
	ErrBadMagic     = errors.New("bad magic")
	ErrBadVersion   = errors.New("unsupported version")
	ErrShortMessage = errors.New("message too short")
	ErrTooLong      = errors.New("message too long")
	ErrBadOp        = errors.New("unknown operation")
	ErrBadValue     = errors.New("invalid value")
)

// Op identifies the operation of a message.
type Op uint16

const (
	OpOpen Op = iota + 1
	OpClose
	OpSend
	OpWait
	OpAbortWait
	OpSetPromiscuous
	OpSetActive
	OpSetMacAddress
	OpGetBufferPointers
	// OpNotify marks unsolicited messages from the switch. They carry
	// request ID zero.
	OpNotify
)

func (o Op) String() string {
	switch o {
	case OpOpen:
		return "open"
	case OpClose:
		return "close"
	case OpSend:
		return "send"
	case OpWait:
		return "wait"
	case OpAbortWait:
		return "abort_wait"
	case OpSetPromiscuous:
		return "set_promiscuous"
	case OpSetActive:
		return "set_active"
	case OpSetMacAddress:
		return "set_mac_address"
	case OpGetBufferPointers:
		return "get_buffer_pointers"
	case OpNotify:
		return "notify"
	default:
		return fmt.Sprintf("op(%d)", uint16(o))
	}
}

// Handle identifies an open interface. Zero is never a valid handle.
type Handle uint32

// InvalidHandle is the zero handle.
const InvalidHandle Handle = 0

// Status is the result code of a reply.
type Status int32

const (
	StatusOK Status = iota
	StatusTimeout
	StatusInterrupted
	StatusInvalidHandle
	StatusInvalidParameter
	StatusNotFound
	StatusAccessDenied
	StatusNoMemory
	StatusBusy
	StatusVersionMismatch
	StatusInternal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusInterrupted:
		return "interrupted"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusInvalidParameter:
		return "invalid parameter"
	case StatusNotFound:
		return "not found"
	case StatusAccessDenied:
		return "access denied"
	case StatusNoMemory:
		return "no memory"
	case StatusBusy:
		return "busy"
	case StatusVersionMismatch:
		return "version mismatch"
	case StatusInternal:
		return "internal error"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Message is a request, a reply or a notification.
type Message struct {
	Op     Op
	ID     uint32
	Handle Handle
	Status Status
	Body   []byte
}

// Len returns the encoded length of the message.
func (m *Message) Len() int {
	return HdrLen + len(m.Body)
}

// SerializeTo writes the message into b and returns the number of bytes
// written.
func (m *Message) SerializeTo(b []byte) (int, error) {
	if m.Len() > MaxMessageLen {
		return 0, serrors.JoinNoStack(ErrTooLong, nil, "len", m.Len())
	}
	if len(b) < m.Len() {
		return 0, serrors.JoinNoStack(ErrShortMessage, nil, "have", len(b), "want", m.Len())
	}
	order.PutUint32(b[0:], Magic)
	order.PutUint16(b[4:], Version)
	order.PutUint16(b[6:], uint16(m.Op))
	order.PutUint32(b[8:], m.ID)
	order.PutUint32(b[12:], uint32(m.Handle))
	order.PutUint32(b[16:], uint32(m.Status))
	copy(b[HdrLen:], m.Body)
	return m.Len(), nil
}

// DecodeFromBytes parses a message. Body aliases b.
func (m *Message) DecodeFromBytes(b []byte) error {
	if len(b) < HdrLen {
		return serrors.JoinNoStack(ErrShortMessage, nil, "len", len(b))
	}
	if magic := order.Uint32(b[0:]); magic != Magic {
		return serrors.JoinNoStack(ErrBadMagic, nil, "magic", magic)
	}
	if v := order.Uint16(b[4:]); v != Version {
		return serrors.JoinNoStack(ErrBadVersion, nil, "version", v)
	}
	m.Op = Op(order.Uint16(b[6:]))
	if m.Op < OpOpen || m.Op > OpNotify {
		return serrors.JoinNoStack(ErrBadOp, nil, "op", m.Op)
	}
	m.ID = order.Uint32(b[8:])
	m.Handle = Handle(order.Uint32(b[12:]))
	m.Status = Status(int32(order.Uint32(b[16:])))
	m.Body = b[HdrLen:]
	return nil
}
