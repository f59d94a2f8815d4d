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

package gso

import (
	"encoding/binary"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

const (
	protoTCP = 6
	protoUDP = 17

	tcpFlagFIN = 0x01
	tcpFlagPSH = 0x08

	ipv4FlagMF     = 0x2000
	ipv4FragOffset = 0x1fff
)

// SegmentLen returns the length of segment i of a logical frame of frameLen
// bytes.
func (d Descriptor) SegmentLen(frameLen, i int) int {
	start, end := d.payloadRange(frameLen, i)
	return int(d.HdrsSeg) + end - start
}

func (d Descriptor) payloadRange(frameLen, i int) (int, int) {
	p := d.SegmentPayload()
	start := int(d.HdrsSeg) + i*p
	end := min(frameLen, start+p)
	if start > end {
		start = end
	}
	return start, end
}

// Carve writes segment i of the logical frame into dst and returns the
// segment length. The descriptor must have been validated against frame.
// frame is not modified.
func Carve(frame []byte, d Descriptor, i int, dst []byte) (int, error) {
	count := d.SegmentCount(len(frame))
	if i < 0 || i >= count {
		return 0, serrors.JoinNoStack(ErrInvalid, nil, "segment", i, "count", count)
	}
	start, end := d.payloadRange(len(frame), i)
	n := int(d.HdrsSeg) + end - start
	if len(dst) < n {
		return 0, serrors.JoinNoStack(ErrShortBuffer, nil, "need", n, "have", len(dst))
	}
	seg := dst[:n]
	copy(seg, frame[:d.HdrsSeg])
	copy(seg[d.HdrsSeg:], frame[start:end])
	last := i == count-1

	switch d.Type {
	case TypeIPv4TCP:
		patchIPv4(seg, d, uint16(i), 0)
		patchTCP(seg, d, uint32(i*d.SegmentPayload()), last)
	case TypeIPv6TCP:
		binary.BigEndian.PutUint16(seg[d.OffHdr1+4:], uint16(n-int(d.OffHdr2)))
		patchTCP(seg, d, uint32(i*d.SegmentPayload()), last)
	case TypeIPv4UDP:
		if i == 0 {
			patchUDP(frame, seg, d)
		}
		frag := uint16((start - int(d.OffHdr2)) / 8)
		if !last {
			frag |= ipv4FlagMF
		}
		patchIPv4(seg, d, 0, frag)
	default:
		return 0, serrors.JoinNoStack(ErrUnsupported, nil, "type", d.Type)
	}
	return n, nil
}

// Split carves every segment of frame into scratch and calls fn for each of
// them in order. The segment passed to fn is only valid during the call.
// Split stops at the first error returned by fn.
func Split(frame []byte, d Descriptor, scratch []byte, fn func(i int, seg []byte) error) error {
	if err := d.Validate(len(frame)); err != nil {
		return err
	}
	for i := range d.SegmentCount(len(frame)) {
		n, err := Carve(frame, d, i, scratch)
		if err != nil {
			return err
		}
		if err := fn(i, scratch[:n]); err != nil {
			return err
		}
	}
	return nil
}

// patchIPv4 rewrites total length and header checksum. A non-zero idInc is
// added to the identification; frag replaces the fragment offset and the MF
// flag when the descriptor is a fragmentation descriptor.
func patchIPv4(seg []byte, d Descriptor, idInc uint16, frag uint16) {
	ip := seg[d.OffHdr1:d.OffHdr2]
	binary.BigEndian.PutUint16(ip[2:], uint16(len(seg)-int(d.OffHdr1)))
	if idInc != 0 {
		binary.BigEndian.PutUint16(ip[4:], binary.BigEndian.Uint16(ip[4:])+idInc)
	}
	if d.Type == TypeIPv4UDP {
		flags := binary.BigEndian.Uint16(ip[6:]) &^ (ipv4FlagMF | ipv4FragOffset)
		binary.BigEndian.PutUint16(ip[6:], flags|frag)
	}
	ip[10], ip[11] = 0, 0
	binary.BigEndian.PutUint16(ip[10:], ^checksum(ip, 0))
}

// patchTCP advances the sequence number by the payload offset of the segment,
// clears FIN and PSH on all but the last segment and recomputes the checksum.
func patchTCP(seg []byte, d Descriptor, seqInc uint32, last bool) {
	tcp := seg[d.OffHdr2:]
	binary.BigEndian.PutUint32(tcp[4:], binary.BigEndian.Uint32(tcp[4:])+seqInc)
	if !last {
		tcp[13] &^= tcpFlagFIN | tcpFlagPSH
	}
	tcp[16], tcp[17] = 0, 0
	sum := pseudoHeaderSum(seg, d, protoTCP, len(tcp))
	binary.BigEndian.PutUint16(tcp[16:], ^checksum(tcp, sum))
}

// patchUDP writes the length and checksum of the whole datagram into the UDP
// header carried by the first fragment.
func patchUDP(frame, seg []byte, d Descriptor) {
	datagram := frame[d.OffHdr2:]
	udp := seg[d.OffHdr2 : d.OffHdr2+8]
	binary.BigEndian.PutUint16(udp[4:], uint16(len(datagram)))
	udp[6], udp[7] = 0, 0
	sum := pseudoHeaderSum(frame, d, protoUDP, len(datagram))
	sum = checksumNoFold(udp, sum)
	csum := ^checksum(datagram[8:], sum)
	if csum == 0 {
		csum = 0xffff
	}
	binary.BigEndian.PutUint16(udp[6:], csum)
}

func pseudoHeaderSum(pkt []byte, d Descriptor, proto uint8, l4Len int) uint64 {
	ip := pkt[d.OffHdr1:d.OffHdr2]
	var addrs []byte
	if d.Type.isIPv4() {
		addrs = ip[12:20]
	} else {
		addrs = ip[8:40]
	}
	sum := checksumNoFold(addrs, 0)
	sum += uint64(proto)
	sum += uint64(l4Len)
	return sum
}
