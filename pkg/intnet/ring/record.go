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
	"fmt"

	"github.com/intnet-dev/intnet/pkg/intnet/gso"
)

const (
	// HdrLen is the size of a record header: type, reserved, payload length.
	HdrLen = 8
	// Alignment of records inside a section.
	Alignment = 8
)

// Type is the tag of a record.
type Type uint16

const (
	TypeFrame    Type = 0x2442
	TypeGsoFrame Type = 0x2443
	TypePadding  Type = 0x2444
)

func (t Type) String() string {
	switch t {
	case TypeFrame:
		return "frame"
	case TypeGsoFrame:
		return "gso"
	case TypePadding:
		return "padding"
	default:
		return fmt.Sprintf("unknown(%#04x)", uint16(t))
	}
}

// Record is a committed record as seen by the reader. Payload aliases the
// section memory and is only valid until the record is skipped.
type Record struct {
	Type    Type
	Payload []byte
	size    uint32
}

// Frame returns the frame bytes of a Frame record, or the logical frame of a
// GsoFrame record (without the descriptor).
func (r Record) Frame() []byte {
	if r.Type == TypeGsoFrame {
		if len(r.Payload) < gso.DescriptorLen {
			return nil
		}
		return r.Payload[gso.DescriptorLen:]
	}
	return r.Payload
}

// Gso decodes the descriptor of a GsoFrame record.
func (r Record) Gso() (gso.Descriptor, error) {
	return gso.Decode(r.Payload)
}

func recordSize(payload int) int {
	return alignUp(HdrLen + payload)
}

func putHeader(b []byte, t Type, payload uint32) {
	order.PutUint16(b[0:], uint16(t))
	order.PutUint16(b[2:], 0)
	order.PutUint32(b[4:], payload)
}

func getHeader(b []byte) (Type, uint32) {
	return Type(order.Uint16(b[0:])), order.Uint32(b[4:])
}
