// SPDX-License-Identifier: MIT

// Command armsrun builds an ARMS preconditioner for a generated test
// matrix, prints the level report and solves a system with FGMRES.
//
// Every flag can also be set through an ARMS_<FLAG> environment variable
// (dashes become underscores) or a YAML file given with --config.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "armsrun",
		Short:         "Build an ARMS preconditioner and solve a model problem with FGMRES",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			l, err := newLogger(withLogLevel(cfg.LogLevel), withLogFormat(cfg.LogFormat))
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			if err := run(cfg, l, cmd.OutOrStdout()); err != nil {
				l.Error("armsrun failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	addFlags(cmd.Flags())

	return cmd
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
