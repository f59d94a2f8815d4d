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
	"encoding"
	"net"
	"time"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// MaxPathLen bounds the shared memory path of a buffer pointers reply.
const MaxPathLen = 255

// OpenRequest is the body of an OpOpen request.
type OpenRequest struct {
	Network  string
	Trunk    Trunk
	Policies Policies
	SendSize uint32
	RecvSize uint32
}

func (r *OpenRequest) MarshalBinary() ([]byte, error) {
	if r.Network == "" || len(r.Network) > MaxNetworkName {
		return nil, serrors.JoinNoStack(ErrBadValue, nil,
			"network", r.Network, "max", MaxNetworkName)
	}
	trunk := r.Trunk
	if trunk == nil {
		trunk = NoTrunk{}
	}
	// Round trip through NewTrunk to reject inconsistent variants.
	if _, err := NewTrunk(trunk.Type(), trunk.Name()); err != nil {
		return nil, err
	}
	flags, err := r.Policies.Flags()
	if err != nil {
		return nil, err
	}
	var e encoder
	e.str(r.Network)
	e.u8(uint8(trunk.Type()))
	e.str(trunk.Name())
	e.u32(uint32(flags))
	e.u32(r.SendSize)
	e.u32(r.RecvSize)
	return e.b, nil
}

func (r *OpenRequest) UnmarshalBinary(b []byte) error {
	d := decoder{b: b}
	network := d.str(MaxNetworkName)
	trunkType := TrunkType(d.u8())
	trunkName := d.str(MaxTrunkName)
	flags := OpenFlags(d.u32())
	sendSize := d.u32()
	recvSize := d.u32()
	if err := d.done(); err != nil {
		return err
	}
	if network == "" {
		return serrors.JoinNoStack(ErrBadValue, nil, "reason", "empty network name")
	}
	trunk, err := NewTrunk(trunkType, trunkName)
	if err != nil {
		return err
	}
	policies, err := PoliciesFromFlags(flags)
	if err != nil {
		return err
	}
	*r = OpenRequest{
		Network:  network,
		Trunk:    trunk,
		Policies: policies,
		SendSize: sendSize,
		RecvSize: recvSize,
	}
	return nil
}

// OpenReply is the body of a successful OpOpen reply.
type OpenReply struct {
	Handle Handle
	// GsoCapable is set if the switch accepts GSO frames on the send section.
	GsoCapable bool
}

func (r *OpenReply) MarshalBinary() ([]byte, error) {
	var e encoder
	e.u32(uint32(r.Handle))
	e.bool(r.GsoCapable)
	return e.b, nil
}

func (r *OpenReply) UnmarshalBinary(b []byte) error {
	d := decoder{b: b}
	h := Handle(d.u32())
	gsoCapable := d.bool()
	if err := d.done(); err != nil {
		return err
	}
	if h == InvalidHandle {
		return serrors.JoinNoStack(ErrBadValue, nil, "handle", h)
	}
	r.Handle, r.GsoCapable = h, gsoCapable
	return nil
}

// WaitRequest is the body of an OpWait request. The timeout has millisecond
// resolution.
type WaitRequest struct {
	Timeout time.Duration
}

func (r *WaitRequest) MarshalBinary() ([]byte, error) {
	if r.Timeout < 0 {
		return nil, serrors.JoinNoStack(ErrBadValue, nil, "timeout", r.Timeout)
	}
	ms := r.Timeout.Milliseconds()
	if ms > int64(^uint32(0)) {
		ms = int64(^uint32(0))
	}
	var e encoder
	e.u32(uint32(ms))
	return e.b, nil
}

func (r *WaitRequest) UnmarshalBinary(b []byte) error {
	d := decoder{b: b}
	ms := d.u32()
	if err := d.done(); err != nil {
		return err
	}
	r.Timeout = time.Duration(ms) * time.Millisecond
	return nil
}

// BoolRequest is the body of OpSetPromiscuous and OpSetActive.
type BoolRequest struct {
	Value bool
}

func (r *BoolRequest) MarshalBinary() ([]byte, error) {
	var e encoder
	e.bool(r.Value)
	return e.b, nil
}

func (r *BoolRequest) UnmarshalBinary(b []byte) error {
	d := decoder{b: b}
	v := d.bool()
	if err := d.done(); err != nil {
		return err
	}
	r.Value = v
	return nil
}

// MacRequest is the body of OpSetMacAddress.
type MacRequest struct {
	MAC net.HardwareAddr
}

func (r *MacRequest) MarshalBinary() ([]byte, error) {
	if len(r.MAC) != 6 {
		return nil, serrors.JoinNoStack(ErrBadValue, nil, "mac", r.MAC)
	}
	var e encoder
	e.raw(r.MAC)
	return e.b, nil
}

func (r *MacRequest) UnmarshalBinary(b []byte) error {
	d := decoder{b: b}
	mac := d.take(6)
	if err := d.done(); err != nil {
		return err
	}
	r.MAC = append(net.HardwareAddr(nil), mac...)
	return nil
}

// BufferPointersReply is the body of a successful OpGetBufferPointers reply.
// It names the shared memory file holding the ring buffer of the interface.
type BufferPointersReply struct {
	Path    string
	Size    uint32
	SendCap uint32
	RecvCap uint32
}

func (r *BufferPointersReply) MarshalBinary() ([]byte, error) {
	if r.Path == "" || len(r.Path) > MaxPathLen {
		return nil, serrors.JoinNoStack(ErrBadValue, nil, "path", r.Path)
	}
	var e encoder
	e.str(r.Path)
	e.u32(r.Size)
	e.u32(r.SendCap)
	e.u32(r.RecvCap)
	return e.b, nil
}

func (r *BufferPointersReply) UnmarshalBinary(b []byte) error {
	d := decoder{b: b}
	path := d.str(MaxPathLen)
	size := d.u32()
	sendCap := d.u32()
	recvCap := d.u32()
	if err := d.done(); err != nil {
		return err
	}
	*r = BufferPointersReply{Path: path, Size: size, SendCap: sendCap, RecvCap: recvCap}
	return nil
}

// NotifyKind is the kind of an unsolicited notification.
type NotifyKind uint8

const (
	// NotifyLinkChanged reports the switch side link state of the network.
	NotifyLinkChanged NotifyKind = iota + 1
	// NotifyDeviceChanged reports changed switch capabilities.
	NotifyDeviceChanged
)

func (k NotifyKind) String() string {
	switch k {
	case NotifyLinkChanged:
		return "link_changed"
	case NotifyDeviceChanged:
		return "device_changed"
	default:
		return "unknown"
	}
}

// Notification is the body of an OpNotify message.
type Notification struct {
	Kind       NotifyKind
	LinkUp     bool
	GsoCapable bool
}

func (n *Notification) MarshalBinary() ([]byte, error) {
	if n.Kind != NotifyLinkChanged && n.Kind != NotifyDeviceChanged {
		return nil, serrors.JoinNoStack(ErrBadValue, nil, "kind", n.Kind)
	}
	var e encoder
	e.u8(uint8(n.Kind))
	e.bool(n.LinkUp)
	e.bool(n.GsoCapable)
	return e.b, nil
}

func (n *Notification) UnmarshalBinary(b []byte) error {
	d := decoder{b: b}
	kind := NotifyKind(d.u8())
	up := d.bool()
	gsoCapable := d.bool()
	if err := d.done(); err != nil {
		return err
	}
	if kind != NotifyLinkChanged && kind != NotifyDeviceChanged {
		return serrors.JoinNoStack(ErrBadValue, nil, "kind", kind)
	}
	*n = Notification{Kind: kind, LinkUp: up, GsoCapable: gsoCapable}
	return nil
}

// NewMessage builds a message with the encoded body. body may be nil for
// operations without payload.
func NewMessage(op Op, id uint32, h Handle, body encoding.BinaryMarshaler) (*Message, error) {
	m := &Message{Op: op, ID: id, Handle: h}
	if body != nil {
		raw, err := body.MarshalBinary()
		if err != nil {
			return nil, serrors.Wrap("encoding body", err, "op", op)
		}
		m.Body = raw
	}
	return m, nil
}
