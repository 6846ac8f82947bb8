// root.go: config-check command definition
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	liquidroute "github.com/liquidroute/liquidroute-geyser-plugin"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	configPath string
	debugLog   bool
	diag       *liquidroute.DiagnosticLog
}

func newRootCommand() *cobra.Command {
	return newCheckCommand(liquidroute.Diagnostics())
}

// newCheckCommand builds the command around diag, which receives the
// resolution steps when --debug-log is set.
func newCheckCommand(diag *liquidroute.DiagnosticLog) *cobra.Command {
	opts := &checkOptions{diag: diag}

	cmd := &cobra.Command{
		Use:   "config-check --config <path>",
		Short: "Validate a LiquidRoute geyser plugin configuration file",
		Long: `config-check loads a plugin configuration exactly the way the plugin does
(strict JSON with a JSON5 fallback, YAML by extension) and prints the
normalized result.

Example:
  config-check --config /etc/liquidroute/liquidroute-geyser.json`,
		Version:       liquidroute.BuildInfo(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to the config file")
	cmd.Flags().BoolVar(&opts.debugLog, "debug-log", false, "also write resolution steps to the diagnostic log")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	if opts.debugLog {
		opts.diag.Initialize()
		opts.diag.SetEnabled(true)
	} else {
		opts.diag.SetEnabled(false)
	}

	if _, err := os.Stat(opts.configPath); err != nil {
		return fmt.Errorf("config file not found: %s", opts.configPath)
	}

	config, err := liquidroute.NewConfigResolver(opts.diag).Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration is valid!")
	fmt.Fprint(out, config.Summary())
	return nil
}
