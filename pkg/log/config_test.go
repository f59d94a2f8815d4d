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

package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/log/logtest"
	"github.com/intnet-dev/intnet/private/config"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg log.Config
	cfg.Sample(&sample, nil, nil)

	logtest.InitTestLogging(&cfg)
	require.NoError(t, config.Decode(sample.Bytes(), &cfg))
	logtest.CheckTestLogging(t, &cfg)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		cfg       log.ConsoleConfig
		assertErr assert.ErrorAssertionFunc
	}{
		"zero": {
			assertErr: assert.NoError,
		},
		"json debug": {
			cfg:       log.ConsoleConfig{Level: "debug", Format: "json"},
			assertErr: assert.NoError,
		},
		"bad level": {
			cfg:       log.ConsoleConfig{Level: "loud"},
			assertErr: assert.Error,
		},
		"bad format": {
			cfg:       log.ConsoleConfig{Format: "xml"},
			assertErr: assert.Error,
		},
		"bad stacktrace level": {
			cfg:       log.ConsoleConfig{StacktraceLevel: "always"},
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tc.assertErr(t, tc.cfg.Validate())
		})
	}
}
