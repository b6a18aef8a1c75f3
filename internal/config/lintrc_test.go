package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestLoadLintConfig_Formats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "yaml",
			file: ".template-lintrc.yml",
			body: `extends: recommended
rules:
  no-bare-strings:
    - warn
    - allowlist: ["(", ")"]
  no-triple-curlies: false
pending:
  - app/templates/legacy
  - moduleId: app/templates/other
    only: [no-html-comments]
`,
		},
		{
			name: "json",
			file: ".template-lintrc.json",
			body: `{
  "extends": ["recommended"],
  "rules": {
    "no-bare-strings": ["warn", {"allowlist": ["(", ")"]}],
    "no-triple-curlies": "off"
  },
  "pending": [
    "app/templates/legacy",
    {"moduleId": "app/templates/other", "only": ["no-html-comments"]}
  ]
}`,
		},
		{
			name: "toml",
			file: ".template-lintrc.toml",
			body: `extends = ["recommended"]
pending = ["app/templates/legacy", { moduleId = "app/templates/other", only = ["no-html-comments"] }]

[rules]
no-bare-strings = ["warn", { allowlist = ["(", ")"] }]
no-triple-curlies = 0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeConfig(t, t.TempDir(), tt.file, tt.body)
			cfg, err := LoadLintConfig(p)
			if err != nil {
				t.Fatalf("LoadLintConfig: %v", err)
			}

			if !reflect.DeepEqual(cfg.Extends, []string{"recommended"}) {
				t.Fatalf("Extends mismatch: %v", cfg.Extends)
			}
			if got := cfg.RuleNames(); !reflect.DeepEqual(got, []string{"no-bare-strings", "no-triple-curlies"}) {
				t.Fatalf("RuleNames mismatch: %v", got)
			}

			bare := cfg.Rules["no-bare-strings"]
			if bare.Severity != SeverityWarn || !bare.Enabled() {
				t.Fatalf("unexpected no-bare-strings setting: %+v", bare)
			}
			allow, ok := bare.Options["allowlist"].([]any)
			if !ok || len(allow) != 2 {
				t.Fatalf("unexpected allowlist option: %#v", bare.Options)
			}
			if curlies := cfg.Rules["no-triple-curlies"]; curlies.Enabled() {
				t.Fatalf("no-triple-curlies should be disabled: %+v", curlies)
			}

			want := []PendingModule{
				{ModuleID: "app/templates/legacy"},
				{ModuleID: "app/templates/other", Only: []string{"no-html-comments"}},
			}
			if !reflect.DeepEqual(cfg.Pending, want) {
				t.Fatalf("Pending mismatch: got %+v want %+v", cfg.Pending, want)
			}
		})
	}
}

func TestLoadLintConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadLintConfig(filepath.Join(dir, "missing.yml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}

	p := writeConfig(t, dir, "bad.json", `{"rules": `)
	if _, err := LoadLintConfig(p); err == nil || !strings.Contains(err.Error(), "parse lint config") {
		t.Fatalf("expected parse error, got %v", err)
	}

}

func TestLoadLintConfig_CarriesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "extra.yml", "plugins: [foo]\nignore:\n  - vendor/**\nrules:\n  no-bare-strings: true\n")

	cfg, err := LoadLintConfig(p)
	if err != nil {
		t.Fatalf("LoadLintConfig: %v", err)
	}
	if !cfg.Rules["no-bare-strings"].Enabled() {
		t.Fatalf("known keys must still be parsed: %+v", cfg.Rules)
	}
	if len(cfg.Extra) != 2 || cfg.Extra["plugins"] == nil || cfg.Extra["ignore"] == nil {
		t.Fatalf("unknown keys not carried: %+v", cfg.Extra)
	}

	merged := &LintConfig{}
	merged.Merge(cfg)
	if !reflect.DeepEqual(merged.Extra, cfg.Extra) {
		t.Fatalf("Merge dropped extra keys: %+v", merged.Extra)
	}
}

func TestDiscoverLintConfig(t *testing.T) {
	dir := t.TempDir()
	if _, ok := DiscoverLintConfig(dir); ok {
		t.Fatalf("expected no config in empty dir")
	}

	writeConfig(t, dir, ".template-lintrc.json", "{}")
	writeConfig(t, dir, ".template-lintrc.yml", "rules: {}\n")

	got, ok := DiscoverLintConfig(dir)
	if !ok {
		t.Fatalf("expected a config to be discovered")
	}
	if filepath.Base(got) != ".template-lintrc.yml" {
		t.Fatalf("expected yml to win discovery order, got %s", got)
	}
}

func TestParseRuleSetting(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{name: "true", in: true, want: SeverityError},
		{name: "false", in: false, want: SeverityOff},
		{name: "string error", in: "error", want: SeverityError},
		{name: "string warning alias", in: "Warning", want: SeverityWarn},
		{name: "string off", in: "off", want: SeverityOff},
		{name: "int", in: 1, want: SeverityWarn},
		{name: "int64", in: int64(2), want: SeverityError},
		{name: "float", in: float64(0), want: SeverityOff},
		{name: "pair", in: []any{"warn", map[string]any{"x": 1}}, want: SeverityWarn},
		{name: "unknown string", in: "loud", wantErr: true},
		{name: "out of range", in: 3, wantErr: true},
		{name: "empty pair", in: []any{}, wantErr: true},
		{name: "options not a map", in: []any{"warn", "x"}, wantErr: true},
		{name: "unsupported type", in: map[string]any{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := ParseRuleSetting(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", rc)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRuleSetting: %v", err)
			}
			if rc.Severity != tt.want {
				t.Fatalf("Severity = %q, want %q", rc.Severity, tt.want)
			}
		})
	}
}

func TestParseRuleOverride(t *testing.T) {
	name, rc, err := ParseRuleOverride("no-bare-strings:warn")
	if err != nil {
		t.Fatalf("ParseRuleOverride: %v", err)
	}
	if name != "no-bare-strings" || rc.Severity != SeverityWarn {
		t.Fatalf("unexpected override %s %+v", name, rc)
	}

	name, rc, err = ParseRuleOverride(`no-bare-strings:["error", {"allowlist": ["Hello"]}]`)
	if err != nil {
		t.Fatalf("ParseRuleOverride: %v", err)
	}
	if name != "no-bare-strings" || rc.Severity != SeverityError {
		t.Fatalf("unexpected override %s %+v", name, rc)
	}
	if _, ok := rc.Options["allowlist"]; !ok {
		t.Fatalf("expected allowlist option, got %+v", rc.Options)
	}

	for _, bad := range []string{"no-bare-strings", ":error", "no-bare-strings:", `no-bare-strings:["error"`} {
		if _, _, err := ParseRuleOverride(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseInlineConfigAndMerge(t *testing.T) {
	base, err := ParseInlineConfig(`{"rules": {"no-bare-strings": true, "no-html-comments": "warn"}, "pending": ["a"]}`)
	if err != nil {
		t.Fatalf("ParseInlineConfig: %v", err)
	}
	overlay, err := ParseInlineConfig(`{"rules": {"no-bare-strings": false}, "pending": [{"moduleId": "b"}]}`)
	if err != nil {
		t.Fatalf("ParseInlineConfig: %v", err)
	}

	base.Merge(overlay)
	base.Merge(nil)

	if base.Rules["no-bare-strings"].Enabled() {
		t.Fatalf("overlay should have disabled no-bare-strings")
	}
	if base.Rules["no-html-comments"].Severity != SeverityWarn {
		t.Fatalf("untouched rule changed: %+v", base.Rules["no-html-comments"])
	}
	if len(base.Pending) != 2 || base.Pending[1].ModuleID != "b" {
		t.Fatalf("pending not appended: %+v", base.Pending)
	}

	if _, err := ParseInlineConfig("{nope"); err == nil {
		t.Fatalf("expected JSON error")
	}
}
