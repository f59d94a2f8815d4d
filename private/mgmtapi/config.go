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

// Package mgmtapi serves the HTTP status API of the daemons and fetches it
// for the command line.
package mgmtapi

import (
	"io"

	"github.com/intnet-dev/intnet/private/config"
)

const configSample = `
# The address to expose the status API on (host:port or ip:port or :port).
# The API is not exposed if it is empty. (default "")
addr = ""
`

var _ config.Config = (*Config)(nil)

// Config is the [api] block.
type Config struct {
	config.NoDefaulter
	config.NoValidator
	// Addr is the listen address of the API server.
	Addr string `toml:"addr,omitempty"`
}

func (cfg *Config) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, configSample)
}

func (cfg *Config) ConfigName() string {
	return "api"
}
