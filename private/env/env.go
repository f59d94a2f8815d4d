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

// Package env contains the configuration blocks and start up helpers shared
// by the daemons.
package env

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/private/config"
)

const (
	// ShutdownGraceInterval is the time the daemons wait for a clean shutdown
	// before forcefully tearing down.
	ShutdownGraceInterval = 5 * time.Second

	// HandlerTimeout is the time after which the metrics handler gives up on
	// a request.
	HandlerTimeout = time.Minute
)

var _ config.Config = (*General)(nil)

// General is the [general] block.
type General struct {
	// ID identifies the daemon instance in logs and metrics.
	ID string `toml:"id,omitempty"`
	// ConfigDir is the directory of auxiliary files, such as the shared
	// memory segments of the switch.
	ConfigDir string `toml:"config_dir,omitempty"`
}

func (cfg *General) InitDefaults() {}

func (cfg *General) Validate() error {
	if cfg.ID == "" {
		return serrors.New("no element id specified")
	}
	if cfg.ConfigDir == "" {
		return nil
	}
	info, err := os.Stat(cfg.ConfigDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return serrors.New("config_dir is not a directory", "dir", cfg.ConfigDir)
	}
	return nil
}

func (cfg *General) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, fmt.Sprintf(generalSample, ctx[config.ID]))
}

func (cfg *General) ConfigName() string {
	return "general"
}

var _ config.Config = (*Metrics)(nil)

// Metrics is the [metrics] block.
type Metrics struct {
	config.NoDefaulter
	config.NoValidator
	// Prometheus is the address to export prometheus metrics on. Metrics are
	// not exported if it is empty.
	Prometheus string `toml:"prometheus,omitempty"`
}

func (cfg *Metrics) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

func (cfg *Metrics) ConfigName() string {
	return "metrics"
}

// ServePrometheus serves /metrics until ctx is done.
func (cfg *Metrics) ServePrometheus(ctx context.Context) error {
	if cfg.Prometheus == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			Timeout: HandlerTimeout,
		}),
	))
	log.Info("Exporting prometheus metrics", "addr", cfg.Prometheus)

	server := &http.Server{Addr: cfg.Prometheus, Handler: mux}
	go func() {
		defer log.HandlePanic()
		<-ctx.Done()
		server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return serrors.Wrap("serving prometheus metrics", err)
	}
	return nil
}

// LogAppStarted logs the start of a daemon.
func LogAppStarted(name, id string) {
	log.Info("=====================> Service started", "svc", name, "id", id,
		"pid", os.Getpid())
}

// LogAppStopped logs the end of a daemon.
func LogAppStopped(name, id string) {
	log.Info("=====================> Service stopped", "svc", name, "id", id)
}
