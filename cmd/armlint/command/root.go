// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Azure/armlint/cmd/armlint/command/check"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var version = "dev"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "armlint",
	Version: version,
	Short:   "A cli tool for analyzing ARM deployment templates",
	Long: `A cli tool for analyzing ARM deployment templates.

This tool can:

- Analyze ARM deployment templates (and compiled Bicep) against the builtin and custom rule catalogs.
- List the rules in the effective catalog.
- Perform validity checks on a rule library member.

Exit status is 0 when no rule failed, 1 when findings were reported and 2 on any other error.
`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		setDefaultLogger(os.Stderr, verbosity)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(2)
	}
}

func init() {
	rootCmd.AddCommand(&analyzeCmd)
	rootCmd.AddCommand(&rulesCmd)
	rootCmd.AddCommand(&check.CheckCmd)
	rootCmd.PersistentFlags().
		CountP("verbose", "v", "Increase log verbosity. Repeatable.")
}

// setDefaultLogger routes engine diagnostics to w through a tint handler.
// Color is disabled when w is not a terminal.
func setDefaultLogger(w *os.File, verbosity int) {
	level := slog.LevelInfo
	if verbosity > 0 {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    !isatty.IsTerminal(w.Fd()),
		}),
	))
}
