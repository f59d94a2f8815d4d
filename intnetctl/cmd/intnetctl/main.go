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

// intnetctl shows the status of the intnet daemons.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/intnet-dev/intnet/intnetctl"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/pkg/private/util"
	api "github.com/intnet-dev/intnet/private/mgmtapi"
	"github.com/intnet-dev/intnet/switchd"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		os.Exit(2)
	}
}

type flags struct {
	api     string
	timeout util.DurWrap
	json    bool
}

func newRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "intnetctl",
		Short:        "Show the status of the intnet daemons",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newSwitch(),
		newAttach(),
	)
	return cmd
}

func addFlags(cmd *cobra.Command, f *flags, defaultAddr string) {
	cmd.Flags().StringVar(&f.api, "api", defaultAddr, "address of the status API")
	f.timeout = util.DurWrap{Duration: 5 * time.Second}
	cmd.Flags().Var(&f.timeout, "timeout", "request timeout")
	cmd.Flags().BoolVar(&f.json, "json", false, "write the raw status as JSON")
}

func newSwitch() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Show the networks and interfaces of intnet-switchd",
		Example: `  intnetctl switch
  intnetctl switch --api 127.0.0.1:30452 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var st switchd.Status
			if err := fetch(cmd.Context(), f, &st); err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), f, st, func(w io.Writer) {
				intnetctl.WriteSwitchStatus(w, st)
			})
		},
	}
	addFlags(cmd, &f, "127.0.0.1:30452")
	return cmd
}

func newAttach() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Show the counters of an intnet-attach interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var st intnetctl.AttachStatus
			if err := fetch(cmd.Context(), f, &st); err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), f, st, func(w io.Writer) {
				intnetctl.WriteAttachStatus(w, st)
			})
		},
	}
	addFlags(cmd, &f, "127.0.0.1:30453")
	return cmd
}

func fetch(ctx context.Context, f flags, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout.Duration)
	defer cancel()
	return api.Get(ctx, nil, f.api, "/status", v)
}

func write(w io.Writer, f flags, v any, human func(io.Writer)) error {
	if !f.json {
		human(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return serrors.Wrap("encoding status", err)
	}
	return nil
}
