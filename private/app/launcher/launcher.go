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

// Package launcher is the start up harness of the daemons. It parses the
// command line, loads the TOML configuration, sets up logging and metrics and
// runs the application main function until a termination signal arrives.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/prom"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	libconfig "github.com/intnet-dev/intnet/private/config"
	"github.com/intnet-dev/intnet/private/env"
)

// Configuration keys read by the launcher itself.
const (
	cfgConfigFile                = "config"
	cfgLogConsoleLevel           = "log.console.level"
	cfgLogConsoleFormat          = "log.console.format"
	cfgLogConsoleStacktraceLevel = "log.console.stacktrace_level"
	cfgGeneralID                 = "general.id"
)

// Application is a daemon run by the launcher.
type Application struct {
	// TOMLConfig is the application configuration. It is loaded from the file
	// given with --config, initialized with defaults and validated before
	// Main runs.
	TOMLConfig libconfig.Config

	// ShortName is the human readable name of the daemon. The executable name
	// is used if empty.
	ShortName string

	// Main is the application logic. It must return once ctx is done.
	Main func(ctx context.Context) error

	// ErrorWriter receives fatal errors. os.Stderr if nil.
	ErrorWriter io.Writer

	config *viper.Viper
}

// Run runs the application and exits the process on a fatal error.
func (a *Application) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(a.errorWriter(), "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func (a *Application) run(ctx context.Context, args []string) error {
	executable := filepath.Base(os.Args[0])
	shortName := a.shortName(executable)

	cmd := newCommandTemplate(executable, shortName, a.TOMLConfig)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return a.executeCommand(cmd.Context(), shortName)
	}
	cmd.SetArgs(args)

	a.config = viper.New()
	a.config.SetDefault(cfgLogConsoleLevel, log.DefaultConsoleLevel)
	a.config.SetDefault(cfgLogConsoleFormat, "human")
	a.config.SetDefault(cfgLogConsoleStacktraceLevel, log.DefaultStacktraceLevel)
	a.config.SetDefault(cfgGeneralID, executable)
	if err := a.config.BindPFlag(cfgConfigFile, cmd.Flags().Lookup(cfgConfigFile)); err != nil {
		return err
	}
	return cmd.ExecuteContext(ctx)
}

func (a *Application) executeCommand(ctx context.Context, shortName string) error {
	file := a.config.GetString(cfgConfigFile)
	a.config.SetConfigType("toml")
	a.config.SetConfigFile(file)
	if err := a.config.ReadInConfig(); err != nil {
		return serrors.Wrap("loading generic config from file", err, "file", file)
	}
	if err := libconfig.LoadFile(file, a.TOMLConfig); err != nil {
		return serrors.Wrap("loading config from file", err, "file", file)
	}
	a.TOMLConfig.InitDefaults()

	logEntriesTotal := prom.NewCounterVec("", "log_emitted_entries_total",
		"Total number of log entries emitted.", "level")
	opt := log.WithEntriesCounter(log.EntriesCounter{
		Debug: logEntriesTotal.With(prometheus.Labels{"level": "debug"}),
		Info:  logEntriesTotal.With(prometheus.Labels{"level": "info"}),
		Error: logEntriesTotal.With(prometheus.Labels{"level": "error"}),
	})
	if err := log.Setup(a.logging(), opt); err != nil {
		return serrors.Wrap("initialize logging", err)
	}
	defer log.Flush()

	id := a.config.GetString(cfgGeneralID)
	env.LogAppStarted(shortName, id)
	defer env.LogAppStopped(shortName, id)
	defer log.HandlePanic()

	prom.ExportElementID(id)
	if err := a.TOMLConfig.Validate(); err != nil {
		return serrors.Wrap("validate config", err)
	}
	if a.Main == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		defer log.HandlePanic()
		done <- a.Main(ctx)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down", "grace", env.ShutdownGraceInterval)
	select {
	case err := <-done:
		return err
	case <-time.After(env.ShutdownGraceInterval):
		return serrors.New("main did not shut down in time",
			"waited", env.ShutdownGraceInterval)
	}
}

func (a *Application) logging() log.Config {
	return log.Config{
		Console: log.ConsoleConfig{
			Level:           a.config.GetString(cfgLogConsoleLevel),
			Format:          a.config.GetString(cfgLogConsoleFormat),
			StacktraceLevel: a.config.GetString(cfgLogConsoleStacktraceLevel),
		},
	}
}

func (a *Application) shortName(executable string) string {
	if a.ShortName != "" {
		return a.ShortName
	}
	return executable
}

func (a *Application) errorWriter() io.Writer {
	if a.ErrorWriter != nil {
		return a.ErrorWriter
	}
	return os.Stderr
}
