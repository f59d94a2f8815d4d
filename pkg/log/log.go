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

// Package log is a thin structured logging layer on top of zap. Context is
// passed as alternating key/value pairs:
//
//	log.Info("interface opened", "network", name, "handle", h)
package log

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

const (
	// DefaultConsoleLevel is the default log level for the console.
	DefaultConsoleLevel = "info"
	// DefaultStacktraceLevel is the default log level for which stack traces are included.
	DefaultStacktraceLevel = "none"
)

// Level is the log level.
type Level zapcore.Level

const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// ConsoleConfig is the config for the console logger.
type ConsoleConfig struct {
	// Level of console logging (defaults to DefaultConsoleLevel).
	Level string `toml:"level,omitempty"`
	// Format of the console logging. (human|json)
	Format string `toml:"format,omitempty"`
	// StacktraceLevel sets from which level stacktraces are included.
	StacktraceLevel string `toml:"stacktrace_level,omitempty"`
	// DisableCaller stops annotating logs with the calling function's file
	// name and line number.
	DisableCaller bool `toml:"disable_caller,omitempty"`
}

// InitDefaults populates unset fields in cfg to their default values (if they
// have one).
func (c *ConsoleConfig) InitDefaults() {
	if c.Level == "" {
		c.Level = DefaultConsoleLevel
	}
	if c.Format == "" {
		c.Format = "human"
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = DefaultStacktraceLevel
	}
}

// Config is the configuration for the logger.
type Config struct {
	Console ConsoleConfig `toml:"console,omitempty"`
}

// InitDefaults populates unset fields in cfg to their default values (if they
// have one).
func (c *Config) InitDefaults() {
	c.Console.InitDefaults()
}

// Setup configures the logging library with the given config.
func Setup(cfg Config, opts ...Option) error {
	cfg.InitDefaults()
	o := applyOptions(opts)
	return setupConsole(cfg.Console, o)
}

func setupConsole(cfg ConsoleConfig, opts options) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return serrors.Wrap("unable to parse log.console.level", err, "level", cfg.Level)
	}
	encoding := "console"
	switch cfg.Format {
	case "", "human":
	case "json":
		encoding = "json"
	default:
		return serrors.New("unknown log.console.format", "format", cfg.Format)
	}
	zCfg := zap.NewProductionConfig()
	zCfg.Level = zap.NewAtomicLevelAt(level)
	zCfg.Encoding = encoding
	zCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zCfg.DisableCaller = cfg.DisableCaller
	zCfg.DisableStacktrace = true
	zCfg.Sampling = nil
	zCfg.OutputPaths = []string{"stderr"}
	zCfg.ErrorOutputPaths = []string{"stderr"}

	zapOpts := opts.zapOptions()
	if cfg.StacktraceLevel != "none" {
		var stLevel zapcore.Level
		if err := stLevel.UnmarshalText([]byte(cfg.StacktraceLevel)); err != nil {
			return serrors.Wrap("unable to parse log.console.stacktrace_level", err,
				"level", cfg.StacktraceLevel)
		}
		zapOpts = append(zapOpts, zap.AddStacktrace(stLevel))
	}
	logger, err := zCfg.Build(append(zapOpts, zap.AddCallerSkip(1))...)
	if err != nil {
		return serrors.Wrap("creating logger", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// HandlePanic catches panics and logs them.
func HandlePanic() {
	if msg := recover(); msg != nil {
		Error("Panic", "msg", msg, "stack", string(debug.Stack()))
		Flush()
		fmt.Fprintf(os.Stderr, "panic: %v\n\n%s", msg, debug.Stack())
		os.Exit(255)
	}
}

// Flush writes the logs to the underlying buffer.
func Flush() {
	_ = zap.L().Sync()
}

// Debug logs at debug level.
func Debug(msg string, ctx ...any) {
	zap.L().Debug(msg, convertCtx(ctx)...)
}

// Info logs at info level.
func Info(msg string, ctx ...any) {
	zap.L().Info(msg, convertCtx(ctx)...)
}

// Error logs at error level.
func Error(msg string, ctx ...any) {
	zap.L().Error(msg, convertCtx(ctx)...)
}

// Enabled checks whether the global logger is enabled at the given level.
func Enabled(lvl Level) bool {
	return zap.L().Core().Enabled(zapcore.Level(lvl))
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// Root returns the root logger. It's a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// FromZap wraps a zap logger.
func FromZap(l *zap.Logger) Logger {
	return &logger{logger: l}
}

// Discard sets the global logger to a no-op logger.
func Discard() {
	zap.ReplaceGlobals(zap.NewNop())
}

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprint(ctx[i])
		}
		fields = append(fields, zap.Any(key, ctx[i+1]))
	}
	return fields
}
