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

package launcher

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	libconfig "github.com/intnet-dev/intnet/private/config"
)

func newCommandTemplate(executable, shortName string, cfg libconfig.Sampler) *cobra.Command {
	cmd := &cobra.Command{
		Use:           executable + " --config <config.toml>",
		Short:         shortName,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.Flags().String(cfgConfigFile, "", "Configuration file (required)")
	_ = cmd.MarkFlagRequired(cfgConfigFile)
	cmd.AddCommand(
		newSample(executable, cfg),
		newVersion(),
	)
	return cmd
}

func newSample(executable string, cfg libconfig.Sampler) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Display a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Sample(cmd.OutOrStdout(), nil, libconfig.CtxMap{libconfig.ID: executable})
			return nil
		},
	}
}

func newVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "unknown")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n",
				info.Main.Path, info.Main.Version, info.GoVersion)
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" || s.Key == "vcs.time" {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", s.Key, s.Value)
				}
			}
			return nil
		},
	}
}
