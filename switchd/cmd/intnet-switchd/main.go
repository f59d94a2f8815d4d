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

package main

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/private/app/launcher"
	api "github.com/intnet-dev/intnet/private/mgmtapi"
	"github.com/intnet-dev/intnet/switchd"
	"github.com/intnet-dev/intnet/switchd/config"
)

var globalCfg config.Config

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "intnet switch",
		Main:       realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	for _, dir := range []string{
		globalCfg.Switch.ShmDir,
		filepath.Dir(globalCfg.Switch.Socket),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return serrors.Wrap("creating directory", err, "dir", dir)
		}
	}
	sw := switchd.New(ctx, switchd.Config{
		ShmDir:     globalCfg.Switch.ShmDir,
		MacTTL:     globalCfg.Switch.MacTTL.Duration,
		GsoCapable: globalCfg.Switch.GsoCapable,
		Metrics:    switchd.NewMetrics(),
	})
	defer sw.Close()

	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.ServePrometheus(errCtx)
	})
	if globalCfg.API.Addr != "" {
		server := &api.Server{
			Service: "intnet-switchd",
			ID:      globalCfg.General.ID,
			Status:  func() (any, error) { return sw.Status(), nil },
		}
		g.Go(func() error {
			defer log.HandlePanic()
			return api.Serve(errCtx, globalCfg.API.Addr, server.Handler())
		})
	}
	g.Go(func() error {
		defer log.HandlePanic()
		srv := switchd.NewServer(sw)
		if err := srv.ListenAndServe(errCtx, globalCfg.Switch.Socket); err != nil {
			return serrors.Wrap("serving switch authority", err)
		}
		return nil
	})
	return g.Wait()
}
