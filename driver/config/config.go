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

// Package config contains the configuration of a driver instance.
package config

import (
	"crypto/rand"
	"io"
	"net"
	"time"

	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/pkg/private/util"
	"github.com/intnet-dev/intnet/private/config"
	"github.com/intnet-dev/intnet/private/env"
	api "github.com/intnet-dev/intnet/private/mgmtapi"
)

const (
	// DefaultSocket is the default socket of the switch authority.
	DefaultSocket = "/run/intnet/switchd.sock"
	// DefaultRequestTimeout is the default round trip timeout of authority
	// requests.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultReceiveBufferSize is the default capacity of the Recv section.
	DefaultReceiveBufferSize = 327680
	// DefaultSendBufferSize is the default capacity of the Send section.
	DefaultSendBufferSize = 200704
	// MinSendBufferSize is the smallest accepted Send section.
	MinSendBufferSize = 128
	// RecommendedSendBufferSize is the Send section size below which large
	// GSO frames may not fit once the section is fragmented.
	RecommendedSendBufferSize = 3 * 65536

	// DefaultRecvWaitSlice is the default time the receive path waits for
	// device model space before re-checking its state.
	DefaultRecvWaitSlice = time.Second
	// DefaultShutdownTimeout bounds the join of the driver goroutines.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultTapName is the default name pattern of the TAP device.
	DefaultTapName = "intnet%d"

	idSample = "intnet-attach"
)

var _ config.Config = (*Config)(nil)

// Config is the configuration of the intnet-attach daemon.
type Config struct {
	General   env.General `toml:"general,omitempty"`
	Logging   log.Config  `toml:"log,omitempty"`
	Metrics   env.Metrics `toml:"metrics,omitempty"`
	API       api.Config  `toml:"api,omitempty"`
	Authority Authority   `toml:"authority,omitempty"`
	Network   Network     `toml:"network,omitempty"`
	Tap       Tap         `toml:"tap,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Authority,
		&cfg.Network,
		&cfg.Tap,
	)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Authority,
		&cfg.Network,
		&cfg.Tap,
	)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, config.CtxMap{config.ID: idSample},
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Authority,
		&cfg.Network,
		&cfg.Tap,
	)
}

var _ config.Config = (*Authority)(nil)

// Authority is the [authority] block.
type Authority struct {
	// Socket is the unix socket of the switch authority.
	Socket string `toml:"socket,omitempty"`
	// RequestTimeout bounds a request round trip.
	RequestTimeout util.DurWrap `toml:"request_timeout,omitempty"`
}

func (cfg *Authority) InitDefaults() {
	if cfg.Socket == "" {
		cfg.Socket = DefaultSocket
	}
	if cfg.RequestTimeout.Duration == 0 {
		cfg.RequestTimeout.Duration = DefaultRequestTimeout
	}
}

func (cfg *Authority) Validate() error {
	if cfg.Socket == "" {
		return serrors.New("authority.socket must be set")
	}
	return nil
}

func (cfg *Authority) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, authoritySample)
}

func (cfg *Authority) ConfigName() string {
	return "authority"
}

var _ config.Config = (*Network)(nil)

// Network is the [network] block. It describes the network the interface
// joins and the behavior of the driver.
type Network struct {
	Name              string `toml:"name,omitempty"`
	TrunkType         string `toml:"trunk_type,omitempty"`
	Trunk             string `toml:"trunk,omitempty"`
	ReceiveBufferSize int    `toml:"receive_buffer_size,omitempty"`
	SendBufferSize    int    `toml:"send_buffer_size,omitempty"`
	SharedMacOnWire   bool   `toml:"shared_mac_on_wire,omitempty"`
	// MAC is the address of the interface. A random locally administered
	// address is used if it is empty.
	MAC string `toml:"mac,omitempty"`

	AccessPolicy         string `toml:"access_policy,omitempty"`
	PromiscPolicyClients string `toml:"promisc_policy_clients,omitempty"`
	PromiscPolicyHost    string `toml:"promisc_policy_host,omitempty"`
	PromiscPolicyWire    string `toml:"promisc_policy_wire,omitempty"`
	IfPolicyPromisc      string `toml:"if_policy_promisc,omitempty"`
	TrunkPolicyHost      string `toml:"trunk_policy_host,omitempty"`
	TrunkPolicyWire      string `toml:"trunk_policy_wire,omitempty"`

	// IsService keeps the interface active on the switch while the device
	// is suspended.
	IsService bool `toml:"is_service,omitempty"`
	// IgnoreConnectFailure starts a disconnected driver if the network cannot
	// be joined.
	IgnoreConnectFailure bool `toml:"ignore_connect_failure,omitempty"`
	// XmitOnWorker moves the drain after a send to the xmit worker.
	XmitOnWorker bool `toml:"xmit_on_worker,omitempty"`
	// LRO hands GSO frames to device models that accept them.
	LRO bool `toml:"lro,omitempty"`

	RecvWaitSlice   util.DurWrap `toml:"recv_wait_slice,omitempty"`
	ShutdownTimeout util.DurWrap `toml:"shutdown_timeout,omitempty"`
}

func (cfg *Network) InitDefaults() {
	if cfg.TrunkType == "" {
		cfg.TrunkType = abi.TrunkNone.String()
	}
	if cfg.ReceiveBufferSize == 0 {
		cfg.ReceiveBufferSize = DefaultReceiveBufferSize
	}
	if cfg.SendBufferSize == 0 {
		cfg.SendBufferSize = DefaultSendBufferSize
	}
	if cfg.RecvWaitSlice.Duration == 0 {
		cfg.RecvWaitSlice.Duration = DefaultRecvWaitSlice
	}
	if cfg.ShutdownTimeout.Duration == 0 {
		cfg.ShutdownTimeout.Duration = DefaultShutdownTimeout
	}
}

func (cfg *Network) Validate() error {
	if cfg.Name == "" {
		return serrors.New("network.name must be set")
	}
	if cfg.ReceiveBufferSize < ring.MinCapacity || cfg.ReceiveBufferSize > ring.MaxCapacity {
		return serrors.New("network.receive_buffer_size out of range",
			"size", cfg.ReceiveBufferSize, "min", ring.MinCapacity, "max", ring.MaxCapacity)
	}
	if cfg.SendBufferSize < MinSendBufferSize || cfg.SendBufferSize > ring.MaxCapacity {
		return serrors.New("network.send_buffer_size out of range",
			"size", cfg.SendBufferSize, "min", MinSendBufferSize, "max", ring.MaxCapacity)
	}
	if _, err := cfg.OpenRequest(); err != nil {
		return err
	}
	if _, err := cfg.HardwareAddr(); err != nil {
		return err
	}
	return nil
}

// OpenRequest builds the open request of the network.
func (cfg *Network) OpenRequest() (abi.OpenRequest, error) {
	tt, err := abi.ParseTrunkType(cfg.TrunkType)
	if err != nil {
		return abi.OpenRequest{}, serrors.Wrap("invalid network.trunk_type", err)
	}
	trunk, err := abi.NewTrunk(tt, cfg.Trunk)
	if err != nil {
		return abi.OpenRequest{}, serrors.Wrap("invalid network.trunk", err)
	}
	policies, err := cfg.Policies()
	if err != nil {
		return abi.OpenRequest{}, err
	}
	req := abi.OpenRequest{
		Network:  cfg.Name,
		Trunk:    trunk,
		Policies: policies,
		SendSize: uint32(cfg.SendBufferSize),
		RecvSize: uint32(cfg.ReceiveBufferSize),
	}
	if _, err := req.MarshalBinary(); err != nil {
		return abi.OpenRequest{}, serrors.Wrap("invalid open request", err)
	}
	return req, nil
}

// Policies parses the policy strings. Empty strings leave the policy unset.
func (cfg *Network) Policies() (abi.Policies, error) {
	var p abi.Policies
	var errs serrors.List
	parse := func(key, s string, fn func(string) error) {
		if s == "" {
			return
		}
		if err := fn(s); err != nil {
			errs = append(errs, serrors.Wrap("invalid policy", err, "key", key))
		}
	}
	parse("access_policy", cfg.AccessPolicy, func(s string) (err error) {
		p.Access, err = abi.ParseAccessPolicy(s)
		return err
	})
	parse("promisc_policy_clients", cfg.PromiscPolicyClients, func(s string) (err error) {
		p.PromiscClients, err = abi.ParsePromiscPolicy(s)
		return err
	})
	parse("promisc_policy_host", cfg.PromiscPolicyHost, func(s string) (err error) {
		p.PromiscTrunkHost, err = abi.ParsePromiscPolicy(s)
		return err
	})
	parse("promisc_policy_wire", cfg.PromiscPolicyWire, func(s string) (err error) {
		p.PromiscTrunkWire, err = abi.ParsePromiscPolicy(s)
		return err
	})
	parse("if_policy_promisc", cfg.IfPolicyPromisc, func(s string) (err error) {
		p.IfPromisc, err = abi.ParseIfPromiscPolicy(s)
		return err
	})
	parse("trunk_policy_host", cfg.TrunkPolicyHost, func(s string) (err error) {
		p.TrunkHost, err = abi.ParseTrunkPolicy(s)
		return err
	})
	parse("trunk_policy_wire", cfg.TrunkPolicyWire, func(s string) (err error) {
		p.TrunkWire, err = abi.ParseTrunkPolicy(s)
		return err
	})
	p.SharedMacOnWire = cfg.SharedMacOnWire
	if err := errs.ToError(); err != nil {
		return abi.Policies{}, err
	}
	return p, nil
}

// HardwareAddr parses the configured MAC address. It returns nil if none is
// configured.
func (cfg *Network) HardwareAddr() (net.HardwareAddr, error) {
	if cfg.MAC == "" {
		return nil, nil
	}
	mac, err := net.ParseMAC(cfg.MAC)
	if err != nil {
		return nil, serrors.Wrap("invalid network.mac", err)
	}
	if len(mac) != 6 {
		return nil, serrors.New("network.mac is not an ethernet address", "mac", cfg.MAC)
	}
	return mac, nil
}

// RandomMAC returns a random unicast, locally administered address.
func RandomMAC() (net.HardwareAddr, error) {
	mac := make(net.HardwareAddr, 6)
	if _, err := rand.Read(mac); err != nil {
		return nil, serrors.Wrap("generating mac address", err)
	}
	mac[0] = mac[0]&^0x01 | 0x02
	return mac, nil
}

func (cfg *Network) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, networkSample)
}

func (cfg *Network) ConfigName() string {
	return "network"
}

var _ config.Config = (*Tap)(nil)

// Tap is the [tap] block.
type Tap struct {
	config.NoValidator
	// Name is the name of the TAP device. A %d in the name is replaced by
	// the kernel with the first free number.
	Name string `toml:"name,omitempty"`
}

func (cfg *Tap) InitDefaults() {
	if cfg.Name == "" {
		cfg.Name = DefaultTapName
	}
}

func (cfg *Tap) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, tapSample)
}

func (cfg *Tap) ConfigName() string {
	return "tap"
}
