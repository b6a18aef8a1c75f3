package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Rule severities as stored in a RuleConfig.
const (
	SeverityOff   = "off"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// DefaultLintConfigNames are probed, in order, when no --config-path is given.
var DefaultLintConfigNames = []string{
	".template-lintrc.yml",
	".template-lintrc.yaml",
	".template-lintrc.json",
	".template-lintrc.toml",
}

// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
var ErrConfigNotFound = errors.New("lint config not found")

// LintConfig is the normalized project lint configuration, whatever file
// format it was read from.
type LintConfig struct {
	Extends []string
	Rules   map[string]RuleConfig `validate:"dive,keys,required,endkeys"`
	Pending []PendingModule       `validate:"dive"`

	// Extra holds top-level keys the built-in engine does not interpret
	// (plugins, overrides, ignore, ...). They are carried, not validated.
	Extra map[string]any
}

// RuleConfig is the setting for one rule.
type RuleConfig struct {
	Severity string `validate:"oneof=off warn error"`
	Options  map[string]any
}

// Enabled reports whether the rule should run.
func (r RuleConfig) Enabled() bool {
	return r.Severity != "" && r.Severity != SeverityOff
}

// PendingModule marks known failures for a module. An empty Only means every
// rule is pending for that module.
type PendingModule struct {
	ModuleID string `validate:"required"`
	Only     []string
}

// DiscoverLintConfig returns the first default config file present in dir.
func DiscoverLintConfig(dir string) (string, bool) {
	for _, name := range DefaultLintConfigNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// LoadLintConfig reads and normalizes the config file at path. The decoder is
// chosen from the file extension; anything that is not .json or .toml is read as YAML.
func LoadLintConfig(path string) (*LintConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read lint config %s: %w", path, err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &raw)
	case ".toml":
		err = toml.Unmarshal(b, &raw)
	default:
		err = yaml.Unmarshal(b, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse lint config %s: %w", path, err)
	}

	cfg, err := ParseLintConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("lint config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseInlineConfig parses the JSON given to --config.
func ParseInlineConfig(s string) (*LintConfig, error) {
	raw := make(map[string]any)
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, errors.New("could not parse specified --config as JSON")
	}
	return ParseLintConfig(raw)
}

// ParseLintConfig normalizes a decoded config document.
func ParseLintConfig(raw map[string]any) (*LintConfig, error) {
	cfg := &LintConfig{Rules: make(map[string]RuleConfig)}

	for key, val := range raw {
		switch key {
		case "extends":
			ext, err := stringList(val)
			if err != nil {
				return nil, fmt.Errorf("extends: %w", err)
			}
			cfg.Extends = ext
		case "rules":
			m, ok := asMap(val)
			if !ok {
				return nil, fmt.Errorf("rules: expected a mapping, got %T", val)
			}
			for name, setting := range m {
				rc, err := ParseRuleSetting(setting)
				if err != nil {
					return nil, fmt.Errorf("rule %q: %w", name, err)
				}
				cfg.Rules[name] = rc
			}
		case "pending":
			pending, err := parsePending(val)
			if err != nil {
				return nil, fmt.Errorf("pending: %w", err)
			}
			cfg.Pending = pending
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]any)
			}
			cfg.Extra[key] = val
		}
	}

	return cfg, nil
}

// Merge overlays other on top of c: rule settings in other win, extends and
// pending entries are appended.
func (c *LintConfig) Merge(other *LintConfig) {
	if other == nil {
		return
	}
	if c.Rules == nil {
		c.Rules = make(map[string]RuleConfig)
	}
	c.Extends = append(c.Extends, other.Extends...)
	for name, rc := range other.Rules {
		c.Rules[name] = rc
	}
	c.Pending = append(c.Pending, other.Pending...)
	for key, val := range other.Extra {
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[key] = val
	}
}

// RuleNames returns the configured rule names, sorted.
func (c *LintConfig) RuleNames() []string {
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseRuleOverride parses a --rule value: "name:severity" or
// `name:["severity", {"option": ...}]`.
func ParseRuleOverride(raw string) (string, RuleConfig, error) {
	name, value, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return "", RuleConfig{}, fmt.Errorf("invalid --rule entry %q: expected rule:severity", raw)
	}

	if strings.HasPrefix(value, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(value), &arr); err != nil {
			return "", RuleConfig{}, fmt.Errorf("invalid --rule entry %q: %w", raw, err)
		}
		rc, err := ParseRuleSetting(arr)
		if err != nil {
			return "", RuleConfig{}, fmt.Errorf("invalid --rule entry %q: %w", raw, err)
		}
		return name, rc, nil
	}

	rc, err := ParseRuleSetting(value)
	if err != nil {
		return "", RuleConfig{}, fmt.Errorf("invalid --rule entry %q: %w", raw, err)
	}
	return name, rc, nil
}

// ParseRuleSetting accepts the forms a rule may be configured with: a bool, a
// severity string or number, or a [severity, options] pair.
func ParseRuleSetting(v any) (RuleConfig, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return RuleConfig{Severity: SeverityError}, nil
		}
		return RuleConfig{Severity: SeverityOff}, nil
	case string:
		sev, err := normalizeSeverity(t)
		if err != nil {
			return RuleConfig{}, err
		}
		return RuleConfig{Severity: sev}, nil
	case int, int64, float64:
		return severityFromNumber(t)
	case []any:
		if len(t) == 0 || len(t) > 2 {
			return RuleConfig{}, fmt.Errorf("expected [severity, options], got %d elements", len(t))
		}
		rc, err := ParseRuleSetting(t[0])
		if err != nil {
			return RuleConfig{}, err
		}
		if len(t) == 2 {
			opts, ok := asMap(t[1])
			if !ok {
				return RuleConfig{}, fmt.Errorf("rule options must be a mapping, got %T", t[1])
			}
			rc.Options = opts
		}
		return rc, nil
	default:
		return RuleConfig{}, fmt.Errorf("unsupported rule setting %v (%T)", v, v)
	}
}

func normalizeSeverity(raw string) (string, error) {
	switch normalizeEnumValue(raw) {
	case "error", "true", "on", "2":
		return SeverityError, nil
	case "warn", "warning", "1":
		return SeverityWarn, nil
	case "off", "false", "0":
		return SeverityOff, nil
	default:
		return "", fmt.Errorf("unsupported severity %q (must be one of: error, warn, off)", raw)
	}
}

func severityFromNumber(v any) (RuleConfig, error) {
	var n float64
	switch t := v.(type) {
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case float64:
		n = t
	}
	switch n {
	case 0:
		return RuleConfig{Severity: SeverityOff}, nil
	case 1:
		return RuleConfig{Severity: SeverityWarn}, nil
	case 2:
		return RuleConfig{Severity: SeverityError}, nil
	}
	return RuleConfig{}, fmt.Errorf("unsupported severity %v (must be 0, 1 or 2)", v)
}

func parsePending(v any) ([]PendingModule, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]PendingModule, 0, len(items))
	for i, item := range items {
		switch t := item.(type) {
		case string:
			out = append(out, PendingModule{ModuleID: t})
		default:
			m, ok := asMap(item)
			if !ok {
				return nil, fmt.Errorf("entry %d: expected a module id or {moduleId, only}, got %T", i, item)
			}
			id, _ := m["moduleId"].(string)
			pm := PendingModule{ModuleID: id}
			if only, ok := m["only"]; ok {
				rules, err := stringList(only)
				if err != nil {
					return nil, fmt.Errorf("entry %d: only: %w", i, err)
				}
				pm.Only = rules
			}
			out = append(out, pm)
		}
	}
	return out, nil
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return t, nil
	default:
		return nil, fmt.Errorf("expected a string or list of strings, got %T", v)
	}
}

// asMap accepts the mapping shapes produced by the JSON, YAML and TOML decoders.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
