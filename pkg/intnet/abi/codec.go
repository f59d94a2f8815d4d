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

package abi

import (
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// encoder appends big endian fields to a byte slice.
type encoder struct {
	b []byte
}

func (e *encoder) u8(v uint8) {
	e.b = append(e.b, v)
}

func (e *encoder) u16(v uint16) {
	e.b = order.AppendUint16(e.b, v)
}

func (e *encoder) u32(v uint32) {
	e.b = order.AppendUint32(e.b, v)
}

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
		return
	}
	e.u8(0)
}

func (e *encoder) str(s string) {
	e.u16(uint16(len(s)))
	e.b = append(e.b, s...)
}

func (e *encoder) raw(b []byte) {
	e.b = append(e.b, b...)
}

// decoder consumes big endian fields. The first error sticks and every
// subsequent read returns zero values.
type decoder struct {
	b   []byte
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.b) < n {
		d.err = serrors.JoinNoStack(ErrShortMessage, nil, "have", len(d.b), "want", n)
		return nil
	}
	v := d.b[:n]
	d.b = d.b[n:]
	return v
}

func (d *decoder) u8() uint8 {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) u16() uint16 {
	if b := d.take(2); b != nil {
		return order.Uint16(b)
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.take(4); b != nil {
		return order.Uint32(b)
	}
	return 0
}

func (d *decoder) bool() bool {
	switch v := d.u8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if d.err == nil {
			d.err = serrors.JoinNoStack(ErrBadValue, nil, "bool", v)
		}
		return false
	}
}

func (d *decoder) str(max int) string {
	n := int(d.u16())
	if d.err == nil && n > max {
		d.err = serrors.JoinNoStack(ErrBadValue, nil, "string_len", n, "max", max)
	}
	return string(d.take(n))
}

func (d *decoder) done() error {
	if d.err == nil && len(d.b) != 0 {
		d.err = serrors.JoinNoStack(ErrBadValue, nil, "trailing_bytes", len(d.b))
	}
	return d.err
}
