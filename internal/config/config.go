package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns are applied when the caller supplies no ignore patterns
// and ignoring has not been disabled.
var DefaultIgnorePatterns = []string{"**/dist/**", "**/tmp/**", "**/node_modules/**"}

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect lint
	// behavior, keep the CLI flags in internal/cli/root.go in sync.
	Sources Sources
	Lint    Lint
	Output  Output
	Runtime Runtime
}

type Sources struct {
	// Patterns are the positional arguments: file paths, globs, or "-" for stdin.
	Patterns []string

	// IgnorePattern lists glob patterns excluded from expansion (see --ignore-pattern).
	// Empty means DefaultIgnorePatterns.
	IgnorePattern []string

	// NoIgnorePattern disables ignore patterns and .gitignore handling (see --no-ignore-pattern).
	NoIgnorePattern bool

	// Filename is the logical path assumed for content read from stdin (see --filename).
	Filename string
}

type Lint struct {
	// ConfigPath points at the project lint configuration (see --config-path).
	// Empty means discover one of DefaultLintConfigNames in the working directory.
	ConfigPath string

	// NoConfigPath ignores any project lint configuration (see --no-config-path).
	NoConfigPath bool

	// Config is an inline JSON lint configuration (see --config).
	Config string

	// Rules are per-invocation rule overrides, name:severity or name:["severity", {...}] (see --rule).
	Rules []string

	// Fix writes fixable corrections back to disk (see --fix).
	Fix bool
}

type Output struct {
	// Quiet reports errors only (see --quiet).
	Quiet bool

	// JSON switches console output, and the pending manifest, to JSON (see --json).
	JSON bool

	// Verbose prints the offending source next to each message (see --verbose).
	Verbose bool

	// PrintPending prints a pending manifest instead of the report (see --print-pending).
	PrintPending bool

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// NoColor disables ANSI colors on the console (see --no-color).
	NoColor bool
}

type Runtime struct {
	// Concurrency is the number of sources linted in parallel (see --concurrency).
	// Must be >= 1.
	Concurrency int

	// Debug enables debug logging on stderr (see --debug).
	Debug bool
}

func New() *Config {
	return &Config{
		Sources: Sources{
			IgnorePattern: append([]string(nil), DefaultIgnorePatterns...),
		},
		Runtime: Runtime{
			Concurrency: 1,
		},
	}
}

func (c *Config) Validate() error {
	c.Lint.Rules = trimList(c.Lint.Rules)
	c.Sources.IgnorePattern = trimList(c.Sources.IgnorePattern)
	c.Sources.Filename = strings.TrimSpace(c.Sources.Filename)
	c.Lint.ConfigPath = strings.TrimSpace(c.Lint.ConfigPath)

	if strings.TrimSpace(c.Lint.Config) != "" && !json.Valid([]byte(c.Lint.Config)) {
		return errors.New("could not parse specified --config as JSON")
	}

	for _, raw := range c.Lint.Rules {
		if _, _, err := ParseRuleOverride(raw); err != nil {
			return err
		}
	}

	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s (must be one of: json, ndjson)", c.Output.OutFormat)
		}
	}

	return nil
}

// EffectiveIgnorePatterns returns the ignore patterns in force, or nil when
// ignoring is disabled.
func (c *Config) EffectiveIgnorePatterns() []string {
	if c.Sources.NoIgnorePattern {
		return nil
	}
	if len(c.Sources.IgnorePattern) == 0 {
		return append([]string(nil), DefaultIgnorePatterns...)
	}
	return c.Sources.IgnorePattern
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func trimList(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
