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

package config_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/driver/config"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/log/logtest"
	libconfig "github.com/intnet-dev/intnet/private/config"
	"github.com/intnet-dev/intnet/private/env/envtest"
	apitest "github.com/intnet-dev/intnet/private/mgmtapi/mgmtapitest"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg config.Config
	cfg.Sample(&sample, nil, nil)

	InitTestConfig(&cfg)
	require.NoError(t, libconfig.Decode(sample.Bytes(), &cfg))
	CheckTestConfig(t, &cfg, "intnet-attach")

	cfg.InitDefaults()
	assert.NoError(t, cfg.Validate())
}

func InitTestConfig(cfg *config.Config) {
	envtest.InitTestGeneral(&cfg.General)
	logtest.InitTestLogging(&cfg.Logging)
	envtest.InitTestMetrics(&cfg.Metrics)
	apitest.InitConfig(&cfg.API)
	cfg.Network.IsService = true
	cfg.Network.ReceiveBufferSize = 1
}

func CheckTestConfig(t *testing.T, cfg *config.Config, id string) {
	envtest.CheckTestGeneral(t, &cfg.General, id)
	logtest.CheckTestLogging(t, &cfg.Logging)
	envtest.CheckTestMetrics(t, &cfg.Metrics)
	apitest.CheckConfig(t, &cfg.API)
	assert.Equal(t, config.DefaultSocket, cfg.Authority.Socket)
	assert.Equal(t, config.DefaultRequestTimeout, cfg.Authority.RequestTimeout.Duration)
	assert.Equal(t, "intnet", cfg.Network.Name)
	assert.Equal(t, "none", cfg.Network.TrunkType)
	assert.Equal(t, config.DefaultReceiveBufferSize, cfg.Network.ReceiveBufferSize)
	assert.Equal(t, config.DefaultSendBufferSize, cfg.Network.SendBufferSize)
	assert.False(t, cfg.Network.IsService)
	assert.Equal(t, config.DefaultRecvWaitSlice, cfg.Network.RecvWaitSlice.Duration)
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.Network.ShutdownTimeout.Duration)
	assert.Equal(t, config.DefaultTapName, cfg.Tap.Name)
}

func TestNetworkDefaults(t *testing.T) {
	cfg := config.Network{Name: "lan"}
	cfg.InitDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.DefaultSendBufferSize, cfg.SendBufferSize)
	assert.Equal(t, time.Second, cfg.RecvWaitSlice.Duration)

	req, err := cfg.OpenRequest()
	require.NoError(t, err)
	assert.Equal(t, abi.OpenRequest{
		Network:  "lan",
		Trunk:    abi.NoTrunk{},
		SendSize: config.DefaultSendBufferSize,
		RecvSize: config.DefaultReceiveBufferSize,
	}, req)
}

func TestNetworkValidate(t *testing.T) {
	tests := map[string]struct {
		modify    func(cfg *config.Network)
		assertErr assert.ErrorAssertionFunc
	}{
		"defaults": {
			modify:    func(*config.Network) {},
			assertErr: assert.NoError,
		},
		"no name": {
			modify:    func(cfg *config.Network) { cfg.Name = "" },
			assertErr: assert.Error,
		},
		"send buffer too small": {
			modify:    func(cfg *config.Network) { cfg.SendBufferSize = 64 },
			assertErr: assert.Error,
		},
		"smallest send buffer": {
			modify:    func(cfg *config.Network) { cfg.SendBufferSize = 128 },
			assertErr: assert.NoError,
		},
		"receive buffer too small": {
			modify:    func(cfg *config.Network) { cfg.ReceiveBufferSize = 8 },
			assertErr: assert.Error,
		},
		"netflt without interface": {
			modify:    func(cfg *config.Network) { cfg.TrunkType = "netflt" },
			assertErr: assert.Error,
		},
		"netflt with interface": {
			modify: func(cfg *config.Network) {
				cfg.TrunkType = "netflt"
				cfg.Trunk = "eth0"
			},
			assertErr: assert.NoError,
		},
		"unknown trunk type": {
			modify:    func(cfg *config.Network) { cfg.TrunkType = "bridge" },
			assertErr: assert.Error,
		},
		"bad policy": {
			modify:    func(cfg *config.Network) { cfg.AccessPolicy = "private" },
			assertErr: assert.Error,
		},
		"bad mac": {
			modify:    func(cfg *config.Network) { cfg.MAC = "02:00:00" },
			assertErr: assert.Error,
		},
		"long mac": {
			modify:    func(cfg *config.Network) { cfg.MAC = "02:00:00:00:00:00:00:01" },
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.Network{Name: "lan"}
			cfg.InitDefaults()
			tc.modify(&cfg)
			tc.assertErr(t, cfg.Validate())
		})
	}
}

func TestNetworkPolicies(t *testing.T) {
	cfg := config.Network{
		Name:                 "lan",
		SharedMacOnWire:      true,
		AccessPolicy:         "restricted,fixed",
		PromiscPolicyClients: "deny",
		PromiscPolicyHost:    "allow",
		IfPolicyPromisc:      "allow-network",
		TrunkPolicyWire:      "disabled,fixed",
	}
	p, err := cfg.Policies()
	require.NoError(t, err)
	assert.Equal(t, abi.Policies{
		Access:           abi.Policy[abi.AccessMode]{Value: abi.AccessRestricted, Fixed: true},
		PromiscClients:   abi.Policy[abi.PromiscMode]{Value: abi.PromiscDeny},
		PromiscTrunkHost: abi.Policy[abi.PromiscMode]{Value: abi.PromiscAllow},
		IfPromisc:        abi.Policy[abi.IfPromiscMode]{Value: abi.IfPromiscAllowNetwork},
		TrunkWire:        abi.Policy[abi.TrunkMode]{Value: abi.TrunkModeDisabled, Fixed: true},
		SharedMacOnWire:  true,
	}, p)
}

func TestRandomMAC(t *testing.T) {
	for range 16 {
		mac, err := config.RandomMAC()
		require.NoError(t, err)
		require.Len(t, mac, 6)
		assert.Zero(t, mac[0]&0x01, "group bit set in %s", mac)
		assert.NotZero(t, mac[0]&0x02, "local bit unset in %s", mac)
	}
}
