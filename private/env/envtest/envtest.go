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

// Package envtest contains helpers to check the samples of the blocks of
// package env from the tests of the daemon configurations.
package envtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/intnet-dev/intnet/private/env"
)

// InitTestGeneral sets fields that the sample must overwrite.
func InitTestGeneral(cfg *env.General) {
	cfg.ConfigDir = "/nonexistent"
}

// CheckTestGeneral checks a General block decoded from its sample.
func CheckTestGeneral(t *testing.T, cfg *env.General, id string) {
	assert.Equal(t, id, cfg.ID)
	assert.Empty(t, cfg.ConfigDir)
}

// InitTestMetrics sets fields that the sample must overwrite.
func InitTestMetrics(cfg *env.Metrics) {
	cfg.Prometheus = "127.0.0.1:0"
}

// CheckTestMetrics checks a Metrics block decoded from its sample.
func CheckTestMetrics(t *testing.T, cfg *env.Metrics) {
	assert.Empty(t, cfg.Prometheus)
}
