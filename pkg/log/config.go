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

package log

import (
	"io"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/private/config"
)

const consoleSample = `
# Console logging level (debug|info|error). (default info)
level = "info"

# Console logging format (human|json). (default human)
format = "human"

# Level from which stack traces are included (debug|info|error|none).
# (default none)
stacktrace_level = "none"

# Disable the annotation of log entries with the calling file and line.
# (default false)
disable_caller = false
`

func (c *ConsoleConfig) Validate() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
		return serrors.Wrap("invalid log.console.level", err, "level", c.Level)
	}
	switch c.Format {
	case "", "human", "json":
	default:
		return serrors.New("unknown log.console.format", "format", c.Format)
	}
	if c.StacktraceLevel != "none" && c.StacktraceLevel != "" {
		if err := level.UnmarshalText([]byte(c.StacktraceLevel)); err != nil {
			return serrors.Wrap("invalid log.console.stacktrace_level", err,
				"level", c.StacktraceLevel)
		}
	}
	return nil
}

func (c *ConsoleConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, consoleSample)
}

func (c *ConsoleConfig) ConfigName() string {
	return "console"
}

func (c *Config) Validate() error {
	return c.Console.Validate()
}

func (c *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx, &c.Console)
}

func (c *Config) ConfigName() string {
	return "log"
}
