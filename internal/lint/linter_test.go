package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tmplint/internal/config"
	_ "tmplint/internal/rules/checks"
)

const bareStringsTemplate = "<h2>Here too!!</h2> <div>Bare strings are bad...</div>"

func mustInline(t *testing.T, js string) *config.LintConfig {
	t.Helper()
	cfg, err := config.ParseInlineConfig(js)
	if err != nil {
		t.Fatalf("ParseInlineConfig: %v", err)
	}
	return cfg
}

func newLinter(t *testing.T, opts EngineOptions) *TemplateLinter {
	t.Helper()
	if opts.WorkingDir == "" {
		opts.WorkingDir = t.TempDir()
	}
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestTemplateLinter_BareStrings(t *testing.T) {
	l := newLinter(t, EngineOptions{Config: mustInline(t, `{"rules": {"no-bare-strings": true}}`)})

	msgs, err := l.Verify(context.Background(), Options{Source: bareStringsTemplate, FilePath: "app/templates/application.hbs", ModuleID: "app/templates/application"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want 2 messages, got %d: %+v", len(msgs), msgs)
	}
	for i, col := range []int{4, 25} {
		m := msgs[i]
		if m.Line != 1 || m.Column != col || m.Severity != SeverityError || m.Rule != "no-bare-strings" {
			t.Errorf("message %d: unexpected %+v", i, m)
		}
		if m.Message != "Non-translated string used" {
			t.Errorf("message %d: unexpected text %q", i, m.Message)
		}
		if m.FilePath != "app/templates/application.hbs" {
			t.Errorf("message %d: unexpected file path %q", i, m.FilePath)
		}
	}
}

func TestTemplateLinter_RuleDisabled(t *testing.T) {
	l := newLinter(t, EngineOptions{Config: mustInline(t, `{"rules": {"no-bare-strings": false}}`)})

	msgs, err := l.Verify(context.Background(), Options{Source: bareStringsTemplate})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("want no messages, got %+v", msgs)
	}
}

func TestTemplateLinter_RuleOverrideWins(t *testing.T) {
	l := newLinter(t, EngineOptions{
		Config: mustInline(t, `{"rules": {"no-bare-strings": "error"}}`),
		Rules:  []string{"no-bare-strings:warn"},
	})

	msgs, _ := l.Verify(context.Background(), Options{Source: "<p>hi</p>"})
	if len(msgs) != 1 || msgs[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning, got %+v", msgs)
	}
}

func TestTemplateLinter_RuleOverrideWithOptions(t *testing.T) {
	l := newLinter(t, EngineOptions{
		Rules: []string{`no-bare-strings:["error", {"allowlist": ["hi"]}]`},
	})

	msgs, _ := l.Verify(context.Background(), Options{Source: "<p>hi</p>"})
	if len(msgs) != 0 {
		t.Fatalf("expected allowlisted text to pass, got %+v", msgs)
	}
}

func TestTemplateLinter_DiscoversProjectConfig(t *testing.T) {
	dir := t.TempDir()
	yml := "rules:\n  no-bare-strings: warn\n"
	if err := os.WriteFile(filepath.Join(dir, ".template-lintrc.yml"), []byte(yml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l := newLinter(t, EngineOptions{WorkingDir: dir})
	msgs, _ := l.Verify(context.Background(), Options{Source: "<p>hi</p>"})
	if len(msgs) != 1 || msgs[0].Severity != SeverityWarning {
		t.Fatalf("expected discovered config to enable the rule, got %+v", msgs)
	}

	l = newLinter(t, EngineOptions{WorkingDir: dir, NoConfigPath: true})
	msgs, _ = l.Verify(context.Background(), Options{Source: "<p>hi</p>"})
	if len(msgs) != 0 {
		t.Fatalf("expected --no-config-path to skip the project config, got %+v", msgs)
	}
}

func TestTemplateLinter_ExtendsRecommended(t *testing.T) {
	l := newLinter(t, EngineOptions{Config: mustInline(t, `{"extends": "recommended"}`)})

	msgs, _ := l.Verify(context.Background(), Options{Source: "<!-- hi -->{{{x}}}"})
	if len(msgs) != 2 {
		t.Fatalf("expected recommended rules to report 2 messages, got %+v", msgs)
	}
}

func TestTemplateLinter_UnknownConfigKeysPassThrough(t *testing.T) {
	l := newLinter(t, EngineOptions{Config: mustInline(t, `{"overrides": [], "plugins": ["x"], "rules": {"no-triple-curlies": true}}`)})

	if got := l.PassthroughKeys(); len(got) != 2 || got[0] != "overrides" || got[1] != "plugins" {
		t.Fatalf("unexpected passthrough keys %v", got)
	}
	msgs, _ := l.Verify(context.Background(), Options{Source: "{{{x}}}"})
	if len(msgs) != 1 {
		t.Fatalf("rules must still apply, got %+v", msgs)
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opts EngineOptions
		is   error
	}{
		{name: "unknown rule", opts: EngineOptions{WorkingDir: dir, Rules: []string{"no-such-rule:error"}}},
		{name: "bad override", opts: EngineOptions{WorkingDir: dir, Rules: []string{"no-colon"}}},
		{name: "bad severity", opts: EngineOptions{WorkingDir: dir, Rules: []string{"no-bare-strings:loud"}}},
		{name: "missing explicit config", opts: EngineOptions{WorkingDir: dir, ConfigPath: "nope.yml"}, is: config.ErrConfigNotFound},
		{name: "config path with no-config-path", opts: EngineOptions{WorkingDir: dir, ConfigPath: "x.yml", NoConfigPath: true}},
		{name: "unknown extends", opts: EngineOptions{WorkingDir: dir, Config: &config.LintConfig{Extends: []string{"mystery"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestTemplateLinter_Pending(t *testing.T) {
	cfg := mustInline(t, `{
		"rules": {"no-bare-strings": true, "no-html-comments": true},
		"pending": [
			{"moduleId": "app/a", "only": ["no-html-comments"]},
			{"moduleId": "app/b", "only": ["no-html-comments"]},
			"app/c",
			"app/d"
		]
	}`)
	l := newLinter(t, EngineOptions{Config: cfg})
	ctx := context.Background()

	// Pending rule still failing: suppressed, other rules still reported.
	msgs, _ := l.Verify(ctx, Options{Source: "<p>hi</p><!-- x -->", ModuleID: "app/a"})
	if len(msgs) != 1 || msgs[0].Rule != "no-bare-strings" {
		t.Fatalf("app/a: expected only the bare string, got %+v", msgs)
	}

	// Pending rule now passes: bookkeeping error.
	msgs, _ = l.Verify(ctx, Options{Source: "{{t 'ok'}}", ModuleID: "app/b"})
	if len(msgs) != 1 || msgs[0].Rule != RuleInvalidPendingModuleRule || msgs[0].Severity != SeverityError {
		t.Fatalf("app/b: expected invalid-pending-module-rule, got %+v", msgs)
	}

	// Whole module pending and failing: everything suppressed.
	msgs, _ = l.Verify(ctx, Options{Source: "<p>hi</p>", ModuleID: "app/c"})
	if len(msgs) != 0 {
		t.Fatalf("app/c: expected all failures suppressed, got %+v", msgs)
	}

	// Whole module pending and clean: bookkeeping error.
	msgs, _ = l.Verify(ctx, Options{Source: "", ModuleID: "app/d"})
	if len(msgs) != 1 || msgs[0].Rule != RuleInvalidPendingModule {
		t.Fatalf("app/d: expected invalid-pending-module, got %+v", msgs)
	}
}

func TestTemplateLinter_VerifyAndFixConverges(t *testing.T) {
	l := newLinter(t, EngineOptions{Config: mustInline(t, `{"rules": {"no-html-comments": true, "no-trailing-spaces": true, "no-bare-strings": true}}`)})
	ctx := context.Background()
	src := "<div>  \n<!-- note -->\n<p>hi</p>\n</div>"

	first, err := l.VerifyAndFix(ctx, Options{Source: src, FilePath: "a.hbs"})
	if err != nil {
		t.Fatalf("VerifyAndFix: %v", err)
	}
	if !first.IsFixed {
		t.Fatalf("expected first pass to fix the source")
	}
	if want := "<div>\n{{!-- note --}}\n<p>hi</p>\n</div>"; first.Output != want {
		t.Fatalf("want %q, got %q", want, first.Output)
	}
	if len(first.Messages) != 1 || first.Messages[0].Rule != "no-bare-strings" {
		t.Fatalf("expected only the unfixable bare string to remain, got %+v", first.Messages)
	}

	second, err := l.VerifyAndFix(ctx, Options{Source: first.Output, FilePath: "a.hbs"})
	if err != nil {
		t.Fatalf("VerifyAndFix: %v", err)
	}
	if second.IsFixed {
		t.Fatalf("second fix run must be a no-op")
	}
	if second.Output != first.Output {
		t.Fatalf("second fix output changed: %q", second.Output)
	}
}
