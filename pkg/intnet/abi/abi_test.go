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

package abi_test

import (
	"bytes"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/pkg/intnet/abi"
)

func TestMessage(t *testing.T) {
	m := abi.Message{
		Op:     abi.OpWait,
		ID:     7,
		Handle: 3,
		Status: abi.StatusTimeout,
		Body:   []byte{1, 2, 3},
	}
	b := make([]byte, m.Len())
	n, err := m.SerializeTo(b)
	require.NoError(t, err)
	assert.Equal(t, abi.HdrLen+3, n)
	assert.Equal(t, []byte{0x49, 0x4e, 0x54, 0x4e, 0, 1, 0, 4}, b[:8])

	var got abi.Message
	require.NoError(t, got.DecodeFromBytes(b))
	assert.Equal(t, m, got)

	_, err = m.SerializeTo(make([]byte, 5))
	assert.ErrorIs(t, err, abi.ErrShortMessage)
	big := abi.Message{Op: abi.OpSend, Body: make([]byte, abi.MaxMessageLen)}
	_, err = big.SerializeTo(make([]byte, big.Len()))
	assert.ErrorIs(t, err, abi.ErrTooLong)

	corrupt := func(off int, v byte) []byte {
		c := append([]byte(nil), b...)
		c[off] = v
		return c
	}
	tests := map[string]struct {
		raw     []byte
		wantErr error
	}{
		"short":       {raw: b[:abi.HdrLen-1], wantErr: abi.ErrShortMessage},
		"bad magic":   {raw: corrupt(0, 0), wantErr: abi.ErrBadMagic},
		"bad version": {raw: corrupt(5, 2), wantErr: abi.ErrBadVersion},
		"op zero":     {raw: corrupt(7, 0), wantErr: abi.ErrBadOp},
		"op unknown":  {raw: corrupt(7, 0x40), wantErr: abi.ErrBadOp},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var m abi.Message
			assert.ErrorIs(t, m.DecodeFromBytes(tc.raw), tc.wantErr)
		})
	}
}

func TestOpenRequest(t *testing.T) {
	policies := abi.Policies{
		Access:           abi.Policy[abi.AccessMode]{Value: abi.AccessRestricted, Fixed: true},
		PromiscClients:   abi.Policy[abi.PromiscMode]{Value: abi.PromiscDeny},
		PromiscTrunkWire: abi.Policy[abi.PromiscMode]{Value: abi.PromiscAllow, Fixed: true},
		IfPromisc:        abi.Policy[abi.IfPromiscMode]{Value: abi.IfPromiscAllowNetwork},
		TrunkHost:        abi.Policy[abi.TrunkMode]{Value: abi.TrunkModeEnabled},
		TrunkWire:        abi.Policy[abi.TrunkMode]{Value: abi.TrunkModeDisabled, Fixed: true},
		SharedMacOnWire:  true,
	}
	tests := map[string]abi.Trunk{
		"none":     abi.NoTrunk{},
		"whatever": abi.WhateverTrunk{},
		"netflt":   abi.NetFltTrunk{Interface: "eth0"},
		"netadp":   abi.NetAdpTrunk{Adapter: "vboxnet0"},
		"srvnat":   abi.SrvNatTrunk{Service: "nat0"},
	}
	for name, trunk := range tests {
		t.Run(name, func(t *testing.T) {
			req := abi.OpenRequest{
				Network:  "intnet",
				Trunk:    trunk,
				Policies: policies,
				SendSize: 200704,
				RecvSize: 327680,
			}
			raw, err := req.MarshalBinary()
			require.NoError(t, err)
			var got abi.OpenRequest
			require.NoError(t, got.UnmarshalBinary(raw))
			assert.Equal(t, req, got)
		})
	}

	t.Run("nil trunk", func(t *testing.T) {
		req := abi.OpenRequest{Network: "n"}
		raw, err := req.MarshalBinary()
		require.NoError(t, err)
		var got abi.OpenRequest
		require.NoError(t, got.UnmarshalBinary(raw))
		assert.Equal(t, abi.NoTrunk{}, got.Trunk)
	})

	invalid := map[string]abi.OpenRequest{
		"empty network":     {},
		"long network":      {Network: strings.Repeat("n", abi.MaxNetworkName+1)},
		"unnamed netflt":    {Network: "n", Trunk: abi.NetFltTrunk{}},
		"fixed unset value": {Network: "n", Policies: abi.Policies{IfPromisc: abi.Policy[abi.IfPromiscMode]{Fixed: true}}},
	}
	for name, req := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := req.MarshalBinary()
			assert.ErrorIs(t, err, abi.ErrBadValue)
		})
	}

	t.Run("truncated", func(t *testing.T) {
		req := abi.OpenRequest{Network: "intnet", Trunk: abi.NetFltTrunk{Interface: "eth0"}}
		raw, err := req.MarshalBinary()
		require.NoError(t, err)
		var got abi.OpenRequest
		assert.ErrorIs(t, got.UnmarshalBinary(raw[:len(raw)-1]), abi.ErrShortMessage)
		assert.ErrorIs(t, got.UnmarshalBinary(append(raw, 0)), abi.ErrBadValue)
	})
}

func TestNewTrunk(t *testing.T) {
	tests := map[string]struct {
		typ     abi.TrunkType
		name    string
		want    abi.Trunk
		wantErr bool
	}{
		"none":               {typ: abi.TrunkNone, want: abi.NoTrunk{}},
		"none with name":     {typ: abi.TrunkNone, name: "eth0", wantErr: true},
		"netflt":             {typ: abi.TrunkNetFlt, name: "eth0", want: abi.NetFltTrunk{Interface: "eth0"}},
		"netflt no name":     {typ: abi.TrunkNetFlt, wantErr: true},
		"srvnat":             {typ: abi.TrunkSrvNat, name: "nat", want: abi.SrvNatTrunk{Service: "nat"}},
		"whatever with name": {typ: abi.TrunkWhatever, name: "x", wantErr: true},
		"invalid":            {typ: abi.TrunkInvalid, wantErr: true},
		"name too long": {
			typ:     abi.TrunkNetAdp,
			name:    strings.Repeat("a", abi.MaxTrunkName+1),
			wantErr: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := abi.NewTrunk(tc.typ, tc.name)
			if tc.wantErr {
				assert.ErrorIs(t, err, abi.ErrBadValue)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.typ, got.Type())
		})
	}
}

func TestParseTrunkType(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    abi.TrunkType
		wantErr bool
	}{
		"empty":   {in: "", want: abi.TrunkNone},
		"netflt":  {in: "NetFlt", want: abi.TrunkNetFlt},
		"srvnat":  {in: "srvnat", want: abi.TrunkSrvNat},
		"unknown": {in: "bridge", want: abi.TrunkInvalid, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := abi.ParseTrunkType(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantErr, err != nil)
		})
	}
}

func TestPolicyFlags(t *testing.T) {
	tests := map[string]struct {
		policies abi.Policies
		want     abi.OpenFlags
	}{
		"unset": {},
		"access restricted fixed": {
			policies: abi.Policies{
				Access: abi.Policy[abi.AccessMode]{Value: abi.AccessRestricted, Fixed: true},
			},
			want: 0x2 | 0x4,
		},
		"promisc clients deny": {
			policies: abi.Policies{
				PromiscClients: abi.Policy[abi.PromiscMode]{Value: abi.PromiscDeny},
			},
			want: 1 << 4,
		},
		"trunk wire disabled fixed": {
			policies: abi.Policies{
				TrunkWire: abi.Policy[abi.TrunkMode]{Value: abi.TrunkModeDisabled, Fixed: true},
			},
			want: 1<<22 | 1<<23,
		},
		"shared mac": {
			policies: abi.Policies{SharedMacOnWire: true},
			want:     abi.FlagSharedMacOnWire,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			flags, err := tc.policies.Flags()
			require.NoError(t, err)
			assert.Equal(t, tc.want, flags)
			got, err := abi.PoliciesFromFlags(flags)
			require.NoError(t, err)
			assert.Equal(t, tc.policies, got)
		})
	}

	invalid := map[string]abi.OpenFlags{
		"conflicting access":  0x1 | 0x2,
		"fixed without value": 0x4,
		"unknown bit":         1 << 25,
	}
	for name, flags := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := abi.PoliciesFromFlags(flags)
			assert.ErrorIs(t, err, abi.ErrBadValue)
		})
	}

	_, err := abi.Policies{Access: abi.Policy[abi.AccessMode]{Value: 3}}.Flags()
	assert.ErrorIs(t, err, abi.ErrBadValue)
}

func TestParsePolicy(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    abi.Policy[abi.AccessMode]
		wantErr bool
	}{
		"empty":          {in: ""},
		"public":         {in: "public", want: abi.Policy[abi.AccessMode]{Value: abi.AccessPublic}},
		"mixed case":     {in: " Public ", want: abi.Policy[abi.AccessMode]{Value: abi.AccessPublic}},
		"fixed":          {in: "restricted,fixed", want: abi.Policy[abi.AccessMode]{Value: abi.AccessRestricted, Fixed: true}},
		"fixed spaced":   {in: "restricted, fixed", want: abi.Policy[abi.AccessMode]{Value: abi.AccessRestricted, Fixed: true}},
		"fixed no value": {in: ",fixed", wantErr: true},
		"bad suffix":     {in: "public,sticky", wantErr: true},
		"unknown":        {in: "open", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := abi.ParseAccessPolicy(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, abi.ErrBadValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	p, err := abi.ParseIfPromiscPolicy("allow-network,fixed")
	require.NoError(t, err)
	assert.Equal(t, "allow-network,fixed", p.String())
	tp, err := abi.ParseTrunkPolicy("promiscuous")
	require.NoError(t, err)
	assert.Equal(t, abi.TrunkModePromiscuous, tp.Value)
	pp, err := abi.ParsePromiscPolicy("deny")
	require.NoError(t, err)
	assert.Equal(t, "deny", pp.String())
}

func TestBodies(t *testing.T) {
	t.Run("open reply", func(t *testing.T) {
		r := abi.OpenReply{Handle: 42, GsoCapable: true}
		raw, err := r.MarshalBinary()
		require.NoError(t, err)
		var got abi.OpenReply
		require.NoError(t, got.UnmarshalBinary(raw))
		assert.Equal(t, r, got)
		zero, err := (&abi.OpenReply{}).MarshalBinary()
		require.NoError(t, err)
		assert.ErrorIs(t, got.UnmarshalBinary(zero), abi.ErrBadValue)
	})
	t.Run("wait", func(t *testing.T) {
		r := abi.WaitRequest{Timeout: 1500 * time.Millisecond}
		raw, err := r.MarshalBinary()
		require.NoError(t, err)
		var got abi.WaitRequest
		require.NoError(t, got.UnmarshalBinary(raw))
		assert.Equal(t, r, got)
		_, err = (&abi.WaitRequest{Timeout: -1}).MarshalBinary()
		assert.ErrorIs(t, err, abi.ErrBadValue)
	})
	t.Run("bool", func(t *testing.T) {
		var got abi.BoolRequest
		assert.ErrorIs(t, got.UnmarshalBinary([]byte{2}), abi.ErrBadValue)
		require.NoError(t, got.UnmarshalBinary([]byte{1}))
		assert.True(t, got.Value)
	})
	t.Run("mac", func(t *testing.T) {
		mac := net.HardwareAddr{0x02, 0, 0, 0, 0, 1}
		raw, err := (&abi.MacRequest{MAC: mac}).MarshalBinary()
		require.NoError(t, err)
		var got abi.MacRequest
		require.NoError(t, got.UnmarshalBinary(raw))
		assert.Equal(t, mac, got.MAC)
		_, err = (&abi.MacRequest{MAC: mac[:5]}).MarshalBinary()
		assert.ErrorIs(t, err, abi.ErrBadValue)
		assert.ErrorIs(t, got.UnmarshalBinary(raw[:5]), abi.ErrShortMessage)
	})
	t.Run("buffer pointers", func(t *testing.T) {
		r := abi.BufferPointersReply{
			Path: "/dev/shm/intnet-1", Size: 4096 + 64, SendCap: 2048, RecvCap: 2048,
		}
		raw, err := r.MarshalBinary()
		require.NoError(t, err)
		var got abi.BufferPointersReply
		require.NoError(t, got.UnmarshalBinary(raw))
		assert.Equal(t, r, got)
	})
	t.Run("notification", func(t *testing.T) {
		n := abi.Notification{Kind: abi.NotifyLinkChanged, LinkUp: true}
		raw, err := n.MarshalBinary()
		require.NoError(t, err)
		var got abi.Notification
		require.NoError(t, got.UnmarshalBinary(raw))
		assert.Equal(t, n, got)
		assert.ErrorIs(t, got.UnmarshalBinary([]byte{9, 0, 0}), abi.ErrBadValue)
	})
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	first, err := abi.NewMessage(abi.OpSetActive, 1, 5, &abi.BoolRequest{Value: true})
	require.NoError(t, err)
	second, err := abi.NewMessage(abi.OpClose, 2, 5, nil)
	require.NoError(t, err)
	require.NoError(t, abi.WriteMessage(&buf, first))
	require.NoError(t, abi.WriteMessage(&buf, second))

	got, err := abi.ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	got, err = abi.ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, abi.OpClose, got.Op)
	assert.Empty(t, got.Body)
	_, err = abi.ReadMessage(&buf)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, abi.WriteMessage(&buf, first))
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-1])
	_, err = abi.ReadMessage(truncated)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = abi.ReadMessage(bytes.NewReader([]byte{0, 0, 0, 4, 1, 2, 3, 4}))
	assert.ErrorIs(t, err, abi.ErrShortMessage)
	_, err = abi.ReadMessage(bytes.NewReader([]byte{0, 1, 0, 1}))
	assert.ErrorIs(t, err, abi.ErrTooLong)
}
