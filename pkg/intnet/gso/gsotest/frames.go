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

// Package gsotest builds logical GSO frames for tests.
package gsotest

import (
	"net"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/pkg/intnet/gso"
)

var (
	SrcMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	DstMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
)

// Payload returns n bytes of a recognizable pattern.
func Payload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}
	return p
}

// TCPv4 builds an Ethernet/IPv4/TCP frame carrying payload and the descriptor
// for segmenting it into frames of at most maxSeg bytes.
func TCPv4(t testing.TB, payload []byte, maxSeg uint16) ([]byte, gso.Descriptor) {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       SrcMAC,
		DstMAC:       DstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Id:       0x1234,
		Flags:    layers.IPv4DontFragment,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IP{192, 168, 0, 1},
		DstIP:    net.IP{192, 168, 0, 2},
	}
	tcp := &layers.TCP{
		SrcPort:    40000,
		DstPort:    80,
		Seq:        1000,
		Ack:        2000,
		ACK:        true,
		PSH:        true,
		FIN:        true,
		Window:     65535,
		DataOffset: 5,
	}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	frame := serialize(t, eth, ip, tcp, gopacket.Payload(payload))
	return frame, gso.Descriptor{
		Type:      gso.TypeIPv4TCP,
		HdrsTotal: 54,
		HdrsSeg:   54,
		OffHdr1:   14,
		OffHdr2:   34,
		MaxSeg:    maxSeg,
	}
}

// TCPv6 builds an Ethernet/IPv6/TCP frame carrying payload.
func TCPv6(t testing.TB, payload []byte, maxSeg uint16) ([]byte, gso.Descriptor) {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       SrcMAC,
		DstMAC:       DstMAC,
		EthernetType: layers.EthernetTypeIPv6,
	}
	ip := &layers.IPv6{
		Version:    6,
		HopLimit:   64,
		NextHeader: layers.IPProtocolTCP,
		SrcIP:      net.ParseIP("fd00::1"),
		DstIP:      net.ParseIP("fd00::2"),
	}
	tcp := &layers.TCP{
		SrcPort:    40000,
		DstPort:    443,
		Seq:        0xfffffff0,
		ACK:        true,
		PSH:        true,
		Window:     65535,
		DataOffset: 5,
	}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	frame := serialize(t, eth, ip, tcp, gopacket.Payload(payload))
	return frame, gso.Descriptor{
		Type:      gso.TypeIPv6TCP,
		HdrsTotal: 74,
		HdrsSeg:   74,
		OffHdr1:   14,
		OffHdr2:   54,
		MaxSeg:    maxSeg,
	}
}

// UDPv4 builds an Ethernet/IPv4/UDP frame carrying payload, segmented by IP
// fragmentation.
func UDPv4(t testing.TB, payload []byte, maxSeg uint16) ([]byte, gso.Descriptor) {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       SrcMAC,
		DstMAC:       DstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Id:       0x4242,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP{10, 0, 0, 1},
		DstIP:    net.IP{10, 0, 0, 2},
	}
	udp := &layers.UDP{SrcPort: 5000, DstPort: 6000}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	frame := serialize(t, eth, ip, udp, gopacket.Payload(payload))
	return frame, gso.Descriptor{
		Type:      gso.TypeIPv4UDP,
		HdrsTotal: 42,
		HdrsSeg:   34,
		OffHdr1:   14,
		OffHdr2:   34,
		MaxSeg:    maxSeg,
	}
}

// Ethernet builds a plain Ethernet frame with the given addresses and payload.
func Ethernet(t testing.TB, src, dst net.HardwareAddr, payload []byte) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       src,
		DstMAC:       dst,
		EthernetType: layers.EthernetTypeIPv4,
	}
	return serialize(t, eth, gopacket.Payload(payload))
}

func serialize(t testing.TB, l ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, l...))
	return append([]byte(nil), buf.Bytes()...)
}
