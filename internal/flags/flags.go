package flags

// Package flags defines canonical CLI flag names shared across the CLI and engine.
// Keeping these as constants helps avoid drift between Cobra flag wiring and other
// code paths that need to reference flags (e.g. help text and error messages).
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Lint.ConfigPath, flags.FlagConfigPath, "", "...")
//	arg := "--" + flags.FlagConfigPath
const (
	// Sources
	FlagFilename        = "filename"
	FlagIgnorePattern   = "ignore-pattern"
	FlagNoIgnorePattern = "no-ignore-pattern"

	// Lint
	FlagConfigPath   = "config-path"
	FlagNoConfigPath = "no-config-path"
	FlagConfig       = "config"
	FlagRule         = "rule"
	FlagFix          = "fix"

	// Output
	FlagQuiet        = "quiet"
	FlagJSON         = "json"
	FlagVerbose      = "verbose"
	FlagPrintPending = "print-pending"
	FlagOut          = "out"
	FlagOutFormat    = "out-format"
	FlagReport       = "report"
	FlagNoColor      = "no-color"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagDebug       = "debug"
)
