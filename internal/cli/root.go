package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tmplint [options] [files..]",
	Short: "Lint Handlebars templates",
	Long: `tmplint lints Handlebars (.hbs) templates against a configurable set of rules.

Positional arguments are file paths or glob patterns ("**" is supported). With no
arguments, or with "-" or "/dev/stdin", the template is read from standard input.

Configuration:
	Rules are configured in .template-lintrc.yml (or .yaml, .json, .toml) in the
	working directory, or in the file named by --config-path. Inline JSON given
	to --config and repeated --rule flags are layered on top.

Output:
	Problems are printed to stdout only when there is at least one error or
	warning. --json prints them as a JSON object keyed by file path.
	Structured outputs can also be written via:
	- --out / --out-format: the full report as JSON, or an NDJSON event stream
	- --report: a Markdown summary

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, lint.message, run.finished).

Exit codes:
	0 = no errors (warnings allowed)
	1 = at least one lint error
	2 = fatal error (bad configuration, unreadable source, failed write)

Examples:
	# Lint every template under app/
	tmplint 'app/**/*.hbs'

	# Lint a piped template, reporting it under a path
	cat app/templates/application.hbs | tmplint --filename app/templates/application.hbs

	# Record current failures as pending
	tmplint --print-pending 'app/**/*.hbs'

	# List rules
	tmplint rules list`,
	Args: cobra.ArbitraryArgs,
	Run:  runLint,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
