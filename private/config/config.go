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

// Package config provides the common pattern of the TOML configuration
// structs of the daemons.
//
// Every block implements Config. InitDefaults fills unset fields, Validate
// checks the result and Sample writes a commented sample of the block. The
// sample of every block is parsed back in the tests of its package, which
// keeps samples and defaults consistent.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// ID is the sample context key of the element ID.
const ID = "id"

// Config is implemented by every configuration block.
type Config interface {
	Sampler
	Validator
	Defaulter
}

// Validator checks a configuration block and its children.
type Validator interface {
	Validate() error
}

// Defaulter initializes the unset fields of a configuration block and its
// children.
type Defaulter interface {
	InitDefaults()
}

// Sampler writes a commented sample of a configuration block to dst. It may
// panic if writing fails.
type Sampler interface {
	Sample(dst io.Writer, path Path, ctx CtxMap)
}

// TableSampler is a Sampler of a named TOML table.
type TableSampler interface {
	Sampler
	ConfigName() string
}

// Path is the TOML table path of a configuration block.
type Path []string

// Extend returns a copy of the path with s appended.
func (p Path) Extend(s string) Path {
	c := append(Path(nil), p...)
	return append(c, s)
}

// NoValidator can be embedded by blocks without validation.
type NoValidator struct{}

func (NoValidator) Validate() error {
	return nil
}

// NoDefaulter can be embedded by blocks without defaults.
type NoDefaulter struct{}

func (NoDefaulter) InitDefaults() {}

// ValidateAll validates all validators and returns the first error.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return serrors.Wrap("validating config", err, "type", fmt.Sprintf("%T", v))
		}
	}
	return nil
}

// InitAll initializes all defaulters.
func InitAll(defaulters ...Defaulter) {
	for _, d := range defaulters {
		d.InitDefaults()
	}
}

// Decode decodes a raw TOML config. Unknown keys are an error.
func Decode(raw []byte, cfg any) error {
	return toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(cfg)
}

// LoadFile decodes the TOML file into cfg.
func LoadFile(file string, cfg any) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if err := Decode(raw, cfg); err != nil {
		return serrors.Wrap("decoding config", err, "file", file)
	}
	return nil
}
