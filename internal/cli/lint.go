package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tmplint/internal/config"
	"tmplint/internal/ctxlog"
	"tmplint/internal/engine"
	"tmplint/internal/flags"
	"tmplint/internal/source"
)

var cfg = config.New()

func runLint(cmd *cobra.Command, args []string) {
	if shouldPrintHelp(cmd, args, source.IsInteractive(os.Stdin)) {
		_ = cmd.Help()
		os.Exit(1)
	}

	cfg.Sources.Patterns = args
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	applyImplicitDefaults(cmd, cfg)

	if cfg.Output.NoColor {
		color.NoColor = true
	}

	logger := ctxlog.New(os.Stderr, cfg.Runtime.Debug)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	eng := engine.NewEngine(os.Stdin, os.Stdout, os.Stderr)
	os.Exit(eng.Run(ctx, cfg))
}

// shouldPrintHelp reports whether the invocation gave nothing to lint: no
// arguments, no flags and a terminal on stdin.
func shouldPrintHelp(cmd *cobra.Command, args []string, interactive bool) bool {
	return len(args) == 0 && cmd.Flags().NFlag() == 0 && interactive
}

func applyImplicitDefaults(cmd *cobra.Command, cfg *config.Config) {
	// --no-config-path wins over an explicit --config-path; the linter
	// rejects the pair otherwise.
	if cfg.Lint.NoConfigPath && cmd != nil && cmd.Flags().Changed(flags.FlagConfigPath) {
		cfg.Lint.ConfigPath = ""
	}
}

func init() {
	// MAINTAINER NOTE: If you add/change/remove any lint-affecting flags here,
	// keep config.Config and its Validate() in sync.

	// Sources
	rootCmd.Flags().StringVar(&cfg.Sources.Filename, flags.FlagFilename, "", "Path reported for, and fixes written to, a template read from stdin")
	rootCmd.Flags().StringArrayVar(&cfg.Sources.IgnorePattern, flags.FlagIgnorePattern, cfg.Sources.IgnorePattern, "Glob of paths to skip (repeatable; replaces the defaults)")
	rootCmd.Flags().BoolVar(&cfg.Sources.NoIgnorePattern, flags.FlagNoIgnorePattern, false, "Disable ignore patterns and .gitignore handling")

	// Lint
	rootCmd.Flags().StringVar(&cfg.Lint.ConfigPath, flags.FlagConfigPath, "", "Lint config file (default: .template-lintrc.{yml,yaml,json,toml} in the working directory)")
	rootCmd.Flags().BoolVar(&cfg.Lint.NoConfigPath, flags.FlagNoConfigPath, false, "Do not read any lint config file")
	rootCmd.Flags().StringVar(&cfg.Lint.Config, flags.FlagConfig, "", "Inline lint config as JSON, layered over the config file")
	rootCmd.Flags().StringArrayVar(&cfg.Lint.Rules, flags.FlagRule, nil, `Rule override as name:severity or name:["severity", {...}] (repeatable)`)
	rootCmd.Flags().BoolVar(&cfg.Lint.Fix, flags.FlagFix, false, "Write fixes for fixable problems back to the source files")

	// Output
	rootCmd.Flags().BoolVar(&cfg.Output.Quiet, flags.FlagQuiet, false, "Report errors only")
	rootCmd.Flags().BoolVar(&cfg.Output.JSON, flags.FlagJSON, false, "Print results (or the pending list) as JSON")
	rootCmd.Flags().BoolVar(&cfg.Output.Verbose, flags.FlagVerbose, false, "Print the offending source with each problem")
	rootCmd.Flags().BoolVar(&cfg.Output.PrintPending, flags.FlagPrintPending, false, "Print a pending list for the current failures instead of the results")
	rootCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	rootCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	rootCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	rootCmd.Flags().BoolVar(&cfg.Output.NoColor, flags.FlagNoColor, false, "Disable colored output")

	// Runtime
	rootCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Templates linted in parallel (default: 1)")
	rootCmd.Flags().BoolVar(&cfg.Runtime.Debug, flags.FlagDebug, false, "Enable debug logging on stderr")
}
