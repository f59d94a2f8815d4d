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

package gso_test

import (
	"bytes"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/intnet/gso/gsotest"
)

func TestSegmentCount(t *testing.T) {
	d := gso.Descriptor{
		Type:      gso.TypeIPv4TCP,
		HdrsTotal: 54,
		HdrsSeg:   54,
		OffHdr1:   14,
		OffHdr2:   34,
		MaxSeg:    1514,
	}
	tests := map[string]struct {
		frameLen int
		want     int
	}{
		"headers only":        {frameLen: 54, want: 1},
		"single byte":         {frameLen: 55, want: 1},
		"exactly one segment": {frameLen: 1514, want: 1},
		"one byte over":       {frameLen: 1515, want: 2},
		"jumbo":               {frameLen: 9000, want: 7},
		"max":                 {frameLen: 65535, want: 45},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.SegmentCount(tc.frameLen))
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	_, d := gsotest.TCPv4(t, gsotest.Payload(100), 1514)
	var b [gso.DescriptorLen]byte
	d.Encode(b[:])
	got, err := gso.Decode(b[:])
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = gso.Decode(b[:4])
	assert.ErrorIs(t, err, gso.ErrInvalid)
}

func TestValidate(t *testing.T) {
	valid := gso.Descriptor{
		Type:      gso.TypeIPv4TCP,
		HdrsTotal: 54,
		HdrsSeg:   54,
		OffHdr1:   14,
		OffHdr2:   34,
		MaxSeg:    1514,
	}
	tests := map[string]struct {
		modify   func(d *gso.Descriptor)
		frameLen int
		wantErr  error
	}{
		"valid": {
			modify:   func(d *gso.Descriptor) {},
			frameLen: 9000,
		},
		"invalid type": {
			modify:   func(d *gso.Descriptor) { d.Type = gso.TypeInvalid },
			frameLen: 9000,
			wantErr:  gso.ErrInvalid,
		},
		"unsupported type": {
			modify:   func(d *gso.Descriptor) { d.Type = gso.TypeIPv4IPv6TCP },
			frameLen: 9000,
			wantErr:  gso.ErrUnsupported,
		},
		"segment headers exceed total": {
			modify:   func(d *gso.Descriptor) { d.HdrsSeg = 60 },
			frameLen: 9000,
			wantErr:  gso.ErrInvalid,
		},
		"headers out of order": {
			modify:   func(d *gso.Descriptor) { d.OffHdr2 = 14 },
			frameLen: 9000,
			wantErr:  gso.ErrInvalid,
		},
		"frame shorter than headers": {
			modify:   func(d *gso.Descriptor) {},
			frameLen: 40,
			wantErr:  gso.ErrInvalid,
		},
		"max segment too small": {
			modify:   func(d *gso.Descriptor) { d.MaxSeg = 54 },
			frameLen: 9000,
			wantErr:  gso.ErrInvalid,
		},
		"too many segments": {
			modify:   func(d *gso.Descriptor) { d.MaxSeg = 55 },
			frameLen: 9000,
			wantErr:  gso.ErrInvalid,
		},
		"ipv4 datagram too long": {
			modify:   func(d *gso.Descriptor) {},
			frameLen: 70000,
			wantErr:  gso.ErrInvalid,
		},
		"udp fragment payload misaligned": {
			modify: func(d *gso.Descriptor) {
				d.Type, d.HdrsTotal, d.HdrsSeg, d.MaxSeg = gso.TypeIPv4UDP, 42, 34, 1500
			},
			frameLen: 9000,
			wantErr:  gso.ErrInvalid,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := valid
			tc.modify(&d)
			err := d.Validate(tc.frameLen)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateFrame(t *testing.T) {
	frame, d := gsotest.TCPv4(t, gsotest.Payload(3000), 1514)
	assert.NoError(t, d.ValidateFrame(frame))

	d.Type = gso.TypeIPv6TCP
	assert.ErrorIs(t, d.ValidateFrame(frame), gso.ErrInvalid)

	frame, d = gsotest.UDPv4(t, gsotest.Payload(3000), 1514)
	assert.NoError(t, d.ValidateFrame(frame))
	frame[23] = uint8(layers.IPProtocolTCP)
	assert.ErrorIs(t, d.ValidateFrame(frame), gso.ErrInvalid)
}

func TestCarveJumboTCPv4(t *testing.T) {
	frame, d := gsotest.TCPv4(t, gsotest.Payload(9000-54), 1514)
	require.Len(t, frame, 9000)
	require.NoError(t, d.ValidateFrame(frame))
	orig := append([]byte(nil), frame...)

	var segs [][]byte
	scratch := make([]byte, d.MaxSeg)
	err := gso.Split(frame, d, scratch, func(i int, seg []byte) error {
		segs = append(segs, append([]byte(nil), seg...))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, segs, 7)
	assert.Equal(t, orig, frame, "frame must not be modified")

	var payload []byte
	for i, seg := range segs {
		assert.LessOrEqual(t, len(seg), int(d.MaxSeg))
		if i < len(segs)-1 {
			assert.Len(t, seg, int(d.MaxSeg))
		} else {
			assert.Less(t, len(seg), len(segs[0]))
			assert.Equal(t, 54+186, len(seg))
		}
		pkt := gopacket.NewPacket(seg, layers.LayerTypeEthernet, gopacket.Default)
		require.Nil(t, pkt.ErrorLayer(), "segment %d", i)
		ip := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		tcp := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
		assert.Equal(t, uint16(len(seg)-14), ip.Length)
		assert.Equal(t, uint16(0x1234+i), ip.Id)
		assert.Equal(t, uint32(1000+i*1460), tcp.Seq)
		last := i == len(segs)-1
		assert.Equal(t, last, tcp.FIN, "segment %d", i)
		assert.Equal(t, last, tcp.PSH, "segment %d", i)
		assert.True(t, tcp.ACK)
		assertChecksums(t, seg, pkt)
		payload = append(payload, tcp.Payload...)
	}
	assert.Equal(t, orig[54:], payload)
}

func TestCarveTCPv6(t *testing.T) {
	frame, d := gsotest.TCPv6(t, gsotest.Payload(4000), 1500)
	require.NoError(t, d.ValidateFrame(frame))
	p := d.SegmentPayload()
	count := d.SegmentCount(len(frame))
	require.Equal(t, (4000+p-1)/p, count)

	var payload []byte
	scratch := make([]byte, d.MaxSeg)
	for i := range count {
		n, err := gso.Carve(frame, d, i, scratch)
		require.NoError(t, err)
		seg := scratch[:n]
		pkt := gopacket.NewPacket(seg, layers.LayerTypeEthernet, gopacket.Default)
		require.Nil(t, pkt.ErrorLayer())
		ip := pkt.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
		tcp := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
		assert.Equal(t, uint16(n-54), ip.Length)
		assert.Equal(t, uint32(0xfffffff0)+uint32(i*p), tcp.Seq)
		assertChecksums(t, seg, pkt)
		payload = append(payload, tcp.Payload...)
	}
	assert.Equal(t, frame[74:], payload)

	_, err := gso.Carve(frame, d, count, scratch)
	assert.ErrorIs(t, err, gso.ErrInvalid)
	_, err = gso.Carve(frame, d, 0, scratch[:100])
	assert.ErrorIs(t, err, gso.ErrShortBuffer)
}

func TestCarveUDPv4Fragments(t *testing.T) {
	frame, d := gsotest.UDPv4(t, gsotest.Payload(5000), 1514)
	require.NoError(t, d.ValidateFrame(frame))

	var datagram []byte
	scratch := make([]byte, d.MaxSeg)
	count := d.SegmentCount(len(frame))
	err := gso.Split(frame, d, scratch, func(i int, seg []byte) error {
		pkt := gopacket.NewPacket(seg, layers.LayerTypeEthernet, gopacket.Default)
		ip := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		assert.Equal(t, uint16(0x4242), ip.Id)
		assert.Equal(t, uint16(len(datagram)/8), ip.FragOffset)
		assert.Equal(t, i < count-1, ip.Flags&layers.IPv4MoreFragments != 0)
		assert.Equal(t, uint16(len(seg)-14), ip.Length)
		assertIPv4Checksum(t, seg[14:34])
		datagram = append(datagram, seg[34:]...)
		return nil
	})
	require.NoError(t, err)
	// The first fragment carries the UDP header of the whole datagram.
	assert.Equal(t, frame[34:], datagram)
}

// assertChecksums re-serializes the decoded layers with computed checksums
// and compares the result to the segment.
func assertChecksums(t *testing.T, seg []byte, pkt gopacket.Packet) {
	t.Helper()
	var ls []gopacket.SerializableLayer
	var network gopacket.NetworkLayer
	for _, l := range pkt.Layers() {
		switch v := l.(type) {
		case *layers.Ethernet:
			ls = append(ls, v)
		case *layers.IPv4:
			network = v
			ls = append(ls, v)
		case *layers.IPv6:
			network = v
			ls = append(ls, v)
		case *layers.TCP:
			require.NoError(t, v.SetNetworkLayerForChecksum(network))
			ls = append(ls, v, gopacket.Payload(v.Payload))
		}
	}
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf,
		gopacket.SerializeOptions{ComputeChecksums: true}, ls...))
	assert.True(t, bytes.Equal(seg, buf.Bytes()), "checksums differ")
}

func assertIPv4Checksum(t *testing.T, hdr []byte) {
	t.Helper()
	var sum uint32
	for i := 0; i < len(hdr); i += 2 {
		sum += uint32(hdr[i])<<8 | uint32(hdr[i+1])
	}
	for sum > 0xffff {
		sum = (sum >> 16) + (sum & 0xffff)
	}
	assert.Equal(t, uint32(0xffff), sum)
}
