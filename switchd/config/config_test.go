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

	"github.com/intnet-dev/intnet/pkg/log/logtest"
	libconfig "github.com/intnet-dev/intnet/private/config"
	"github.com/intnet-dev/intnet/private/env/envtest"
	apitest "github.com/intnet-dev/intnet/private/mgmtapi/mgmtapitest"
	"github.com/intnet-dev/intnet/switchd/config"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg config.Config
	cfg.Sample(&sample, nil, nil)

	InitTestConfig(&cfg)
	require.NoError(t, libconfig.Decode(sample.Bytes(), &cfg))
	CheckTestConfig(t, &cfg, "intnet-switchd")

	cfg.InitDefaults()
	assert.NoError(t, cfg.Validate())
}

func InitTestConfig(cfg *config.Config) {
	envtest.InitTestGeneral(&cfg.General)
	logtest.InitTestLogging(&cfg.Logging)
	envtest.InitTestMetrics(&cfg.Metrics)
	apitest.InitConfig(&cfg.API)
	cfg.Switch.GsoCapable = true
	cfg.Switch.MacTTL.Duration = time.Hour
}

func CheckTestConfig(t *testing.T, cfg *config.Config, id string) {
	envtest.CheckTestGeneral(t, &cfg.General, id)
	logtest.CheckTestLogging(t, &cfg.Logging)
	envtest.CheckTestMetrics(t, &cfg.Metrics)
	apitest.CheckConfig(t, &cfg.API)
	assert.Equal(t, config.DefaultSocket, cfg.Switch.Socket)
	assert.Equal(t, "/dev/shm", cfg.Switch.ShmDir)
	assert.Equal(t, config.DefaultMacTTL, cfg.Switch.MacTTL.Duration)
	assert.False(t, cfg.Switch.GsoCapable)
}

func TestSwitchValidate(t *testing.T) {
	tests := map[string]struct {
		modify    func(cfg *config.Switch)
		assertErr assert.ErrorAssertionFunc
	}{
		"defaults": {
			modify:    func(*config.Switch) {},
			assertErr: assert.NoError,
		},
		"relative shm dir": {
			modify:    func(cfg *config.Switch) { cfg.ShmDir = "shm" },
			assertErr: assert.Error,
		},
		"short mac ttl": {
			modify:    func(cfg *config.Switch) { cfg.MacTTL.Duration = time.Millisecond },
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg config.Switch
			cfg.InitDefaults()
			tc.modify(&cfg)
			tc.assertErr(t, cfg.Validate())
		})
	}
}
