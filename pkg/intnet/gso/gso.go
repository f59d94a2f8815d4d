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

// Package gso describes oversized logical frames and carves them into
// wire-sized segments.
//
// A logical frame starts with HdrsSeg bytes of headers that are replicated in
// every segment. Segment i carries the payload bytes
// [HdrsSeg + i*P, min(L, HdrsSeg + (i+1)*P)) where P = MaxSeg - HdrsSeg, so
// that no segment is longer than MaxSeg. For TCP, HdrsSeg equals HdrsTotal.
// UDP over IPv4 is segmented by IP fragmentation: only the IP header is
// replicated and the UDP header travels in the first fragment.
package gso

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// DescriptorLen is the size of an encoded Descriptor.
const DescriptorLen = 8

// MaxSegments bounds the number of segments of a single logical frame.
const MaxSegments = 1024

// MaxFrameLen bounds a logical GSO frame: a 64 KiB IP packet behind an
// Ethernet header with a VLAN tag.
const MaxFrameLen = 65535 + 18

// Type selects the protocol headers patched in every segment.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeIPv4TCP
	TypeIPv6TCP
	TypeIPv4UDP
	TypeIPv6UDP
	TypeIPv4IPv6TCP
	TypeIPv4IPv6UDP
)

func (t Type) String() string {
	switch t {
	case TypeIPv4TCP:
		return "ipv4/tcp"
	case TypeIPv6TCP:
		return "ipv6/tcp"
	case TypeIPv4UDP:
		return "ipv4/udp"
	case TypeIPv6UDP:
		return "ipv6/udp"
	case TypeIPv4IPv6TCP:
		return "ipv4/ipv6/tcp"
	case TypeIPv4IPv6UDP:
		return "ipv4/ipv6/udp"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(t))
	}
}

func (t Type) isTCP() bool {
	return t == TypeIPv4TCP || t == TypeIPv6TCP
}

func (t Type) isIPv4() bool {
	return t == TypeIPv4TCP || t == TypeIPv4UDP
}

var (
	// ErrInvalid is the base error of every descriptor validation failure.
	ErrInvalid = errors.New("invalid gso descriptor")
	// ErrUnsupported is returned for descriptor types that cannot be carved.
	ErrUnsupported = errors.New("unsupported gso type")
	// ErrShortBuffer is returned when the destination of a segment is too small.
	ErrShortBuffer = errors.New("segment buffer too small")
)

// Descriptor describes how to segment a logical frame.
type Descriptor struct {
	Type Type
	// HdrsTotal is the length of all headers, from the start of the frame to
	// the end of the L4 header.
	HdrsTotal uint8
	// HdrsSeg is the length of the headers replicated in each segment.
	HdrsSeg uint8
	// OffHdr1 is the offset of the IP header.
	OffHdr1 uint8
	// OffHdr2 is the offset of the L4 header.
	OffHdr2 uint8
	// MaxSeg is the maximum length of a segment, headers included.
	MaxSeg uint16
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s hdrs=%d/%d off=%d/%d max_seg=%d",
		d.Type, d.HdrsTotal, d.HdrsSeg, d.OffHdr1, d.OffHdr2, d.MaxSeg)
}

// Encode writes the descriptor into the first DescriptorLen bytes of b.
func (d Descriptor) Encode(b []byte) {
	b[0] = uint8(d.Type)
	b[1] = d.HdrsTotal
	b[2] = d.HdrsSeg
	b[3] = d.OffHdr1
	b[4] = d.OffHdr2
	b[5] = 0
	binary.LittleEndian.PutUint16(b[6:], d.MaxSeg)
}

// Decode parses a descriptor from the first DescriptorLen bytes of b. It does
// not validate the descriptor.
func Decode(b []byte) (Descriptor, error) {
	if len(b) < DescriptorLen {
		return Descriptor{}, serrors.JoinNoStack(ErrInvalid, nil, "len", len(b))
	}
	return Descriptor{
		Type:      Type(b[0]),
		HdrsTotal: b[1],
		HdrsSeg:   b[2],
		OffHdr1:   b[3],
		OffHdr2:   b[4],
		MaxSeg:    binary.LittleEndian.Uint16(b[6:]),
	}, nil
}

// SegmentPayload returns the payload length of every segment but the last.
func (d Descriptor) SegmentPayload() int {
	return int(d.MaxSeg) - int(d.HdrsSeg)
}

// SegmentCount returns the number of segments a logical frame of frameLen
// bytes is carved into. It is at least one.
func (d Descriptor) SegmentCount(frameLen int) int {
	p := d.SegmentPayload()
	payload := frameLen - int(d.HdrsSeg)
	if p <= 0 || payload <= 0 {
		return 1
	}
	return (payload + p - 1) / p
}

// Validate checks the descriptor against the length of the logical frame it
// describes.
func (d Descriptor) Validate(frameLen int) error {
	invalid := func(reason string) error {
		return serrors.JoinNoStack(ErrInvalid, nil, "reason", reason, "gso", d, "len", frameLen)
	}
	switch d.Type {
	case TypeIPv4TCP, TypeIPv6TCP, TypeIPv4UDP:
	case TypeIPv6UDP, TypeIPv4IPv6TCP, TypeIPv4IPv6UDP:
		return serrors.JoinNoStack(ErrUnsupported, nil, "type", d.Type)
	default:
		return invalid("unknown type")
	}
	ipLen := int(d.OffHdr2) - int(d.OffHdr1)
	switch {
	case d.HdrsTotal < d.HdrsSeg:
		return invalid("segment headers exceed total headers")
	case d.OffHdr2 <= d.OffHdr1:
		return invalid("header offsets out of order")
	case d.Type.isIPv4() && (ipLen < 20 || ipLen > 60 || ipLen%4 != 0):
		return invalid("bad ipv4 header length")
	case d.Type == TypeIPv6TCP && ipLen != 40:
		return invalid("bad ipv6 header length")
	case int(d.MaxSeg) <= int(d.HdrsSeg):
		return invalid("max segment does not exceed headers")
	case frameLen < int(d.HdrsTotal):
		return invalid("frame shorter than headers")
	case frameLen-int(d.OffHdr1) > 0xffff && d.Type.isIPv4():
		return invalid("ip datagram too long")
	}
	if d.Type.isTCP() {
		l4 := int(d.HdrsTotal) - int(d.OffHdr2)
		if d.HdrsSeg != d.HdrsTotal || l4 < 20 || l4 > 60 || l4%4 != 0 {
			return invalid("bad tcp headers")
		}
	} else {
		if d.HdrsSeg != d.OffHdr2 || int(d.HdrsTotal) != int(d.OffHdr2)+8 {
			return invalid("bad udp headers")
		}
		if d.SegmentPayload()%8 != 0 {
			return invalid("fragment payload not a multiple of 8")
		}
	}
	if d.SegmentCount(frameLen) > MaxSegments {
		return invalid("too many segments")
	}
	return nil
}

// ValidateFrame validates the descriptor and checks that the IP header of
// frame matches the descriptor type.
func (d Descriptor) ValidateFrame(frame []byte) error {
	if err := d.Validate(len(frame)); err != nil {
		return err
	}
	ip := frame[d.OffHdr1:d.OffHdr2]
	var version, proto uint8
	if d.Type.isIPv4() {
		version, proto = 4, ip[9]
		if int(ip[0]&0x0f)*4 != len(ip) {
			return serrors.JoinNoStack(ErrInvalid, nil, "reason", "ihl mismatch", "gso", d)
		}
	} else {
		version, proto = 6, ip[6]
	}
	want := uint8(protoUDP)
	if d.Type.isTCP() {
		want = protoTCP
	}
	if ip[0]>>4 != version || proto != want {
		return serrors.JoinNoStack(ErrInvalid, nil,
			"reason", "header mismatch", "version", ip[0]>>4, "proto", proto, "gso", d)
	}
	return nil
}
