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

	"golang.org/x/sync/errgroup"

	"github.com/intnet-dev/intnet/driver"
	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/driver/config"
	"github.com/intnet-dev/intnet/intnetctl"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/private/app/launcher"
	api "github.com/intnet-dev/intnet/private/mgmtapi"
	"github.com/intnet-dev/intnet/private/tap"
)

var globalCfg config.Config

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "intnet attach",
		Main:       realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	cfg, err := driver.NewConfig(&globalCfg.Network)
	if err != nil {
		return err
	}
	if cfg.MAC == nil {
		if cfg.MAC, err = config.RandomMAC(); err != nil {
			return err
		}
	}
	cfg.Metrics = driver.NewMetrics()

	client, err := authority.Dial(ctx, globalCfg.Authority.Socket,
		authority.WithRequestTimeout(globalCfg.Authority.RequestTimeout.Duration),
		authority.WithLogger(log.New("component", "authority_client")),
	)
	if err != nil {
		return err
	}
	defer client.Disconnect()

	dev, err := tap.Open(ctx, tap.Config{Name: globalCfg.Tap.Name, MAC: cfg.MAC})
	if err != nil {
		return err
	}
	defer dev.Close()

	cfg.Interface = dev.Name()
	drv, err := driver.New(ctx, client, dev, cfg)
	if err != nil {
		return serrors.Wrap("attaching to network", err, "network", cfg.Open.Network)
	}
	defer drv.Close()
	if err := drv.PowerOn(); err != nil {
		return err
	}

	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.ServePrometheus(errCtx)
	})
	if globalCfg.API.Addr != "" {
		server := &api.Server{
			Service: "intnet-attach",
			ID:      globalCfg.General.ID,
			Status: func() (any, error) {
				return intnetctl.AttachStatus{
					Device: dev.Name(),
					Driver: drv.Stats(),
					Tap:    dev.Stats(),
				}, nil
			},
		}
		g.Go(func() error {
			defer log.HandlePanic()
			return api.Serve(errCtx, globalCfg.API.Addr, server.Handler())
		})
	}
	g.Go(func() error {
		defer log.HandlePanic()
		return tap.WatchLink(errCtx, dev.Name(), drv)
	})
	g.Go(func() error {
		defer log.HandlePanic()
		return dev.Run(errCtx, drv)
	})
	return g.Wait()
}
