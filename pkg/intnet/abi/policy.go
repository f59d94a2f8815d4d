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

// AccessMode controls who may join a network.
type AccessMode uint8

const (
	AccessUnset AccessMode = iota
	AccessPublic
	AccessRestricted
)

// PromiscMode controls whether a scope may see traffic not addressed to it.
type PromiscMode uint8

const (
	PromiscUnset PromiscMode = iota
	PromiscAllow
	PromiscDeny
)

// IfPromiscMode controls what a promiscuous interface sees.
type IfPromiscMode uint8

const (
	IfPromiscUnset IfPromiscMode = iota
	// IfPromiscAllowAll sees the network and the trunk.
	IfPromiscAllowAll
	// IfPromiscAllowNetwork sees the network only.
	IfPromiscAllowNetwork
	IfPromiscDeny
)

// TrunkMode controls one side (host or wire) of the trunk.
type TrunkMode uint8

const (
	TrunkModeUnset TrunkMode = iota
	TrunkModePromiscuous
	TrunkModeEnabled
	TrunkModeDisabled
)

// Policy is a policy value. A fixed policy must match the policy of the
// network exactly when joining an existing network.
type Policy[T ~uint8] struct {
	Value T
	Fixed bool
}

// Policies is the complete policy set of an open request. Unset values leave
// the decision to the switch.
type Policies struct {
	Access           Policy[AccessMode]
	PromiscClients   Policy[PromiscMode]
	PromiscTrunkHost Policy[PromiscMode]
	PromiscTrunkWire Policy[PromiscMode]
	IfPromisc        Policy[IfPromiscMode]
	TrunkHost        Policy[TrunkMode]
	TrunkWire        Policy[TrunkMode]
	SharedMacOnWire  bool
}

// OpenFlags is the policy bitmask of an open request.
type OpenFlags uint32

// Each policy occupies one bit per value followed by its fixed bit.
const (
	shiftAccess           = 0
	shiftPromiscClients   = 3
	shiftPromiscTrunkHost = 6
	shiftPromiscTrunkWire = 9
	shiftIfPromisc        = 12
	shiftTrunkHost        = 16
	shiftTrunkWire        = 20

	// FlagSharedMacOnWire makes the trunk use the host MAC on the wire.
	FlagSharedMacOnWire OpenFlags = 1 << 24

	flagsMask OpenFlags = 1<<25 - 1
)

func encodePolicy[T ~uint8](p Policy[T], shift, values int) (OpenFlags, error) {
	if int(p.Value) > values {
		return 0, serrors.JoinNoStack(ErrBadValue, nil, "policy", p.Value, "shift", shift)
	}
	var f OpenFlags
	if p.Value != 0 {
		f |= 1 << (shift + int(p.Value) - 1)
	}
	if p.Fixed {
		if p.Value == 0 {
			return 0, serrors.JoinNoStack(ErrBadValue, nil,
				"reason", "fixed policy without value", "shift", shift)
		}
		f |= 1 << (shift + values)
	}
	return f, nil
}

func decodePolicy[T ~uint8](f OpenFlags, shift, values int) (Policy[T], error) {
	var p Policy[T]
	for v := 1; v <= values; v++ {
		if f&(1<<(shift+v-1)) == 0 {
			continue
		}
		if p.Value != 0 {
			return p, serrors.JoinNoStack(ErrBadValue, nil,
				"reason", "conflicting policy bits", "flags", uint32(f), "shift", shift)
		}
		p.Value = T(v)
	}
	p.Fixed = f&(1<<(shift+values)) != 0
	if p.Fixed && p.Value == 0 {
		return p, serrors.JoinNoStack(ErrBadValue, nil,
			"reason", "fixed policy without value", "shift", shift)
	}
	return p, nil
}

// Flags encodes the policies into the open bitmask.
func (p Policies) Flags() (OpenFlags, error) {
	var flags OpenFlags
	var errs serrors.List
	add := func(f OpenFlags, err error) {
		if err != nil {
			errs = append(errs, err)
		}
		flags |= f
	}
	add(encodePolicy(p.Access, shiftAccess, 2))
	add(encodePolicy(p.PromiscClients, shiftPromiscClients, 2))
	add(encodePolicy(p.PromiscTrunkHost, shiftPromiscTrunkHost, 2))
	add(encodePolicy(p.PromiscTrunkWire, shiftPromiscTrunkWire, 2))
	add(encodePolicy(p.IfPromisc, shiftIfPromisc, 3))
	add(encodePolicy(p.TrunkHost, shiftTrunkHost, 3))
	add(encodePolicy(p.TrunkWire, shiftTrunkWire, 3))
	if p.SharedMacOnWire {
		flags |= FlagSharedMacOnWire
	}
	if err := errs.ToError(); err != nil {
		return 0, err
	}
	return flags, nil
}

// PoliciesFromFlags decodes an open bitmask.
func PoliciesFromFlags(f OpenFlags) (Policies, error) {
	if f&^flagsMask != 0 {
		return Policies{}, serrors.JoinNoStack(ErrBadValue, nil, "flags", uint32(f))
	}
	var p Policies
	var errs serrors.List
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	var err error
	p.Access, err = decodePolicy[AccessMode](f, shiftAccess, 2)
	collect(err)
	p.PromiscClients, err = decodePolicy[PromiscMode](f, shiftPromiscClients, 2)
	collect(err)
	p.PromiscTrunkHost, err = decodePolicy[PromiscMode](f, shiftPromiscTrunkHost, 2)
	collect(err)
	p.PromiscTrunkWire, err = decodePolicy[PromiscMode](f, shiftPromiscTrunkWire, 2)
	collect(err)
	p.IfPromisc, err = decodePolicy[IfPromiscMode](f, shiftIfPromisc, 3)
	collect(err)
	p.TrunkHost, err = decodePolicy[TrunkMode](f, shiftTrunkHost, 3)
	collect(err)
	p.TrunkWire, err = decodePolicy[TrunkMode](f, shiftTrunkWire, 3)
	collect(err)
	p.SharedMacOnWire = f&FlagSharedMacOnWire != 0
	if err := errs.ToError(); err != nil {
		return Policies{}, err
	}
	return p, nil
}

// Configuration names of the policy values.
var (
	accessNames    = []string{"", "public", "restricted"}
	promiscNames   = []string{"", "allow", "deny"}
	ifPromiscNames = []string{"", "allow-all", "allow-network", "deny"}
	trunkModeNames = []string{"", "promiscuous", "enabled", "disabled"}
)

func parsePolicy[T ~uint8](s string, names []string) (Policy[T], error) {
	var p Policy[T]
	value, fixed, hasSuffix := strings.Cut(strings.TrimSpace(s), ",")
	if hasSuffix {
		if strings.TrimSpace(fixed) != "fixed" {
			return p, serrors.JoinNoStack(ErrBadValue, nil, "policy", s)
		}
		p.Fixed = true
	}
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		if p.Fixed {
			return p, serrors.JoinNoStack(ErrBadValue, nil, "policy", s)
		}
		return p, nil
	}
	for i, name := range names {
		if i > 0 && name == value {
			p.Value = T(i)
			return p, nil
		}
	}
	return p, serrors.JoinNoStack(ErrBadValue, nil, "policy", s, "allowed", names[1:])
}

func formatPolicy[T ~uint8](p Policy[T], names []string) string {
	if int(p.Value) >= len(names) {
		return "invalid"
	}
	s := names[p.Value]
	if p.Fixed {
		s += ",fixed"
	}
	return s
}

// ParseAccessPolicy parses "public" or "restricted", optionally followed by
// ",fixed".
func ParseAccessPolicy(s string) (Policy[AccessMode], error) {
	return parsePolicy[AccessMode](s, accessNames)
}

// ParsePromiscPolicy parses "allow" or "deny", optionally followed by
// ",fixed".
func ParsePromiscPolicy(s string) (Policy[PromiscMode], error) {
	return parsePolicy[PromiscMode](s, promiscNames)
}

// ParseIfPromiscPolicy parses "allow-all", "allow-network" or "deny",
// optionally followed by ",fixed".
func ParseIfPromiscPolicy(s string) (Policy[IfPromiscMode], error) {
	return parsePolicy[IfPromiscMode](s, ifPromiscNames)
}

// ParseTrunkPolicy parses "promiscuous", "enabled" or "disabled", optionally
// followed by ",fixed".
func ParseTrunkPolicy(s string) (Policy[TrunkMode], error) {
	return parsePolicy[TrunkMode](s, trunkModeNames)
}

func (m AccessMode) String() string {
	return formatPolicy(Policy[AccessMode]{Value: m}, accessNames)
}

func (m PromiscMode) String() string {
	return formatPolicy(Policy[PromiscMode]{Value: m}, promiscNames)
}

func (m IfPromiscMode) String() string {
	return formatPolicy(Policy[IfPromiscMode]{Value: m}, ifPromiscNames)
}

func (m TrunkMode) String() string {
	return formatPolicy(Policy[TrunkMode]{Value: m}, trunkModeNames)
}

// String formats the policy the way it is parsed.
func (p Policy[T]) String() string {
	s := fmt.Sprint(p.Value)
	if p.Fixed {
		s += ",fixed"
	}
	return s
}
