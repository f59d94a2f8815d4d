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
	"fmt"
	"strings"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// TrunkType is the kind of uplink a network is connected to.
type TrunkType uint8

const (
	TrunkInvalid TrunkType = iota
	// TrunkNone is a purely internal network.
	TrunkNone
	// TrunkWhatever connects to whatever trunk the network already has.
	TrunkWhatever
	// TrunkNetFlt bridges to a host interface.
	TrunkNetFlt
	// TrunkNetAdp connects to a host-only adapter.
	TrunkNetAdp
	// TrunkSrvNat connects to a NAT service.
	TrunkSrvNat
)

var trunkNames = map[TrunkType]string{
	TrunkNone:     "none",
	TrunkWhatever: "whatever",
	TrunkNetFlt:   "netflt",
	TrunkNetAdp:   "netadp",
	TrunkSrvNat:   "srvnat",
}

func (t TrunkType) String() string {
	if s, ok := trunkNames[t]; ok {
		return s
	}
	return fmt.Sprintf("trunk(%d)", uint8(t))
}

// ParseTrunkType parses the configuration name of a trunk type. The empty
// string is TrunkNone.
func ParseTrunkType(s string) (TrunkType, error) {
	if s == "" {
		return TrunkNone, nil
	}
	for t, name := range trunkNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return TrunkInvalid, serrors.JoinNoStack(ErrBadValue, nil, "trunk_type", s)
}

// Trunk is the trunk configuration of an open request. It is one of NoTrunk,
// WhateverTrunk, NetFltTrunk, NetAdpTrunk or SrvNatTrunk.
type Trunk interface {
	Type() TrunkType
	Name() string
}

// NoTrunk is an internal network without uplink.
type NoTrunk struct{}

func (NoTrunk) Type() TrunkType { return TrunkNone }
func (NoTrunk) Name() string    { return "" }

// WhateverTrunk accepts the trunk of an existing network.
type WhateverTrunk struct{}

func (WhateverTrunk) Type() TrunkType { return TrunkWhatever }
func (WhateverTrunk) Name() string    { return "" }

// NetFltTrunk bridges the network to a host interface.
type NetFltTrunk struct {
	Interface string
}

func (NetFltTrunk) Type() TrunkType { return TrunkNetFlt }
func (t NetFltTrunk) Name() string  { return t.Interface }

// NetAdpTrunk connects the network to a host-only adapter.
type NetAdpTrunk struct {
	Adapter string
}

func (NetAdpTrunk) Type() TrunkType { return TrunkNetAdp }
func (t NetAdpTrunk) Name() string  { return t.Adapter }

// SrvNatTrunk connects the network to a NAT service.
type SrvNatTrunk struct {
	Service string
}

func (SrvNatTrunk) Type() TrunkType { return TrunkSrvNat }
func (t SrvNatTrunk) Name() string  { return t.Service }

// NewTrunk builds the trunk variant of type t. Variants with a name require
// one, the others reject it.
func NewTrunk(t TrunkType, name string) (Trunk, error) {
	if len(name) > MaxTrunkName {
		return nil, serrors.JoinNoStack(ErrBadValue, nil,
			"trunk", name, "len", len(name), "max", MaxTrunkName)
	}
	named := func() error {
		if name == "" {
			return serrors.JoinNoStack(ErrBadValue, nil, "reason", "trunk name required",
				"trunk_type", t)
		}
		return nil
	}
	unnamed := func() error {
		if name != "" {
			return serrors.JoinNoStack(ErrBadValue, nil, "reason", "unexpected trunk name",
				"trunk_type", t, "trunk", name)
		}
		return nil
	}
	var tr Trunk
	var err error
	switch t {
	case TrunkNone:
		tr, err = NoTrunk{}, unnamed()
	case TrunkWhatever:
		tr, err = WhateverTrunk{}, unnamed()
	case TrunkNetFlt:
		tr, err = NetFltTrunk{Interface: name}, named()
	case TrunkNetAdp:
		tr, err = NetAdpTrunk{Adapter: name}, named()
	case TrunkSrvNat:
		tr, err = SrvNatTrunk{Service: name}, named()
	default:
		err = serrors.JoinNoStack(ErrBadValue, nil, "trunk_type", t)
	}
	if err != nil {
		return nil, err
	}
	return tr, nil
}
