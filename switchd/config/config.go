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

// Package config contains the configuration of the switch daemon.
package config

import (
	"io"
	"path/filepath"
	"time"

	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/pkg/private/util"
	"github.com/intnet-dev/intnet/private/config"
	"github.com/intnet-dev/intnet/private/env"
	api "github.com/intnet-dev/intnet/private/mgmtapi"
	"github.com/intnet-dev/intnet/private/shm"
)

const (
	// DefaultSocket is the socket the switch authority listens on.
	DefaultSocket = "/run/intnet/switchd.sock"
	// DefaultMacTTL is the default lifetime of learned addresses.
	DefaultMacTTL = 5 * time.Minute

	idSample = "intnet-switchd"
)

var _ config.Config = (*Config)(nil)

// Config is the configuration of the intnet-switchd daemon.
type Config struct {
	General env.General `toml:"general,omitempty"`
	Logging log.Config  `toml:"log,omitempty"`
	Metrics env.Metrics `toml:"metrics,omitempty"`
	API     api.Config  `toml:"api,omitempty"`
	Switch  Switch      `toml:"switch,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Switch,
	)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Switch,
	)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, config.CtxMap{config.ID: idSample},
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Switch,
	)
}

var _ config.Config = (*Switch)(nil)

// Switch is the [switch] block.
type Switch struct {
	// Socket is the unix socket of the switch authority.
	Socket string `toml:"socket,omitempty"`
	// ShmDir holds the shared memory segments of the ring buffers.
	ShmDir string `toml:"shm_dir,omitempty"`
	// MacTTL is the lifetime of learned MAC addresses.
	MacTTL util.DurWrap `toml:"mac_ttl,omitempty"`
	// GsoCapable lets clients send GSO frames without carving them.
	GsoCapable bool `toml:"gso_capable,omitempty"`
}

func (cfg *Switch) InitDefaults() {
	if cfg.Socket == "" {
		cfg.Socket = DefaultSocket
	}
	if cfg.ShmDir == "" {
		cfg.ShmDir = shm.DefaultDir()
	}
	if cfg.MacTTL.Duration == 0 {
		cfg.MacTTL.Duration = DefaultMacTTL
	}
}

func (cfg *Switch) Validate() error {
	if cfg.Socket == "" {
		return serrors.New("switch.socket must be set")
	}
	if !filepath.IsAbs(cfg.ShmDir) {
		return serrors.New("switch.shm_dir must be absolute", "dir", cfg.ShmDir)
	}
	if cfg.MacTTL.Duration < time.Second {
		return serrors.New("switch.mac_ttl too short", "mac_ttl", cfg.MacTTL, "min", "1s")
	}
	return nil
}

func (cfg *Switch) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, switchSample)
}

func (cfg *Switch) ConfigName() string {
	return "switch"
}
