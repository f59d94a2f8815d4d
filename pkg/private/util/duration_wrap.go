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

package util

import (
	"encoding"
	"time"

	"github.com/spf13/pflag"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

var (
	_ encoding.TextUnmarshaler = (*DurWrap)(nil)
	_ encoding.TextMarshaler   = DurWrap{}
	_ pflag.Value              = (*DurWrap)(nil)
)

// DurWrap wraps a duration so that it can be used in TOML files and as a
// command line flag.
type DurWrap struct {
	time.Duration
}

func (d *DurWrap) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

// Set parses a duration in the format of time.ParseDuration. Negative
// durations are rejected.
func (d *DurWrap) Set(text string) error {
	v, err := time.ParseDuration(text)
	if err != nil {
		return serrors.Wrap("parsing duration", err, "input", text)
	}
	if v < 0 {
		return serrors.New("negative duration", "input", text)
	}
	d.Duration = v
	return nil
}

func (d DurWrap) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d DurWrap) String() string {
	return d.Duration.String()
}

// Type implements pflag.Value.
func (DurWrap) Type() string {
	return "duration"
}
