package lint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"

	"tmplint/internal/config"
	"tmplint/internal/rules"
)

// maxFixPasses bounds the fix loop; fixes that keep producing new changes
// after this many passes are cut off.
const maxFixPasses = 10

var validate = validator.New()

// EngineOptions is the closed set of inputs a TemplateLinter is built from.
type EngineOptions struct {
	// WorkingDir resolves a relative ConfigPath and is where default config
	// files are discovered.
	WorkingDir string

	// ConfigPath is an explicit config file. Empty means discover one.
	ConfigPath string `validate:"omitempty,excluded_with=NoConfigPath"`

	// NoConfigPath skips the project config file entirely.
	NoConfigPath bool

	// Config is an inline configuration layered over the project file.
	Config *config.LintConfig

	// Rules are --rule overrides, applied last.
	Rules []string `validate:"dive,required,contains=:"`
}

type activeRule struct {
	rule     rules.Rule
	severity Severity
	settings rules.Settings
}

// TemplateLinter is the built-in Linter backed by the rules registry.
type TemplateLinter struct {
	rules       []activeRule
	pending     map[string]config.PendingModule
	passthrough []string
}

// New builds a TemplateLinter. Every configuration problem (unreadable or
// malformed config, unknown rule, bad severity) is reported here, before any
// source is linted.
func New(opts EngineOptions) (*TemplateLinter, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid linter options: %w", err)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid lint config: %w", err)
	}

	active, err := activateRules(cfg)
	if err != nil {
		return nil, err
	}

	pending := make(map[string]config.PendingModule, len(cfg.Pending))
	for _, pm := range cfg.Pending {
		pending[pm.ModuleID] = pm
	}

	passthrough := make([]string, 0, len(cfg.Extra))
	for key := range cfg.Extra {
		passthrough = append(passthrough, key)
	}
	sort.Strings(passthrough)

	return &TemplateLinter{rules: active, pending: pending, passthrough: passthrough}, nil
}

// PassthroughKeys lists, sorted, the lint config keys that were accepted but
// have no effect on the built-in rules.
func (l *TemplateLinter) PassthroughKeys() []string {
	return l.passthrough
}

func loadConfig(opts EngineOptions) (*config.LintConfig, error) {
	cfg := &config.LintConfig{Rules: make(map[string]config.RuleConfig)}

	if !opts.NoConfigPath {
		path := opts.ConfigPath
		if path == "" {
			path, _ = config.DiscoverLintConfig(opts.WorkingDir)
		} else if !filepath.IsAbs(path) && opts.WorkingDir != "" {
			path = filepath.Join(opts.WorkingDir, path)
		}
		if path != "" {
			fileCfg, err := config.LoadLintConfig(path)
			if err != nil {
				return nil, err
			}
			cfg.Merge(fileCfg)
		}
	}

	cfg.Merge(opts.Config)

	for _, raw := range opts.Rules {
		name, rc, err := config.ParseRuleOverride(raw)
		if err != nil {
			return nil, err
		}
		cfg.Rules[name] = rc
	}
	return cfg, nil
}

func activateRules(cfg *config.LintConfig) ([]activeRule, error) {
	resolved := &config.LintConfig{Rules: make(map[string]config.RuleConfig)}
	settings := resolved.Rules

	for _, ext := range cfg.Extends {
		switch ext {
		case "recommended", "tmplint:recommended":
			for _, r := range rules.Recommended() {
				settings[r.ID()] = config.RuleConfig{Severity: config.SeverityError}
			}
		default:
			return nil, fmt.Errorf("cannot extend unknown config %q", ext)
		}
	}
	for name, rc := range cfg.Rules {
		settings[name] = rc
	}

	var active []activeRule
	for _, name := range resolved.RuleNames() {
		r, ok := rules.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q in lint config", name)
		}
		rc := settings[name]
		if !rc.Enabled() {
			continue
		}
		sev := SeverityError
		if rc.Severity == config.SeverityWarn {
			sev = SeverityWarning
		}
		active = append(active, activeRule{rule: r, severity: sev, settings: rules.Settings(rc.Options)})
	}
	return active, nil
}

// Verify implements Linter.
func (l *TemplateLinter) Verify(ctx context.Context, opts Options) ([]Message, error) {
	if l == nil {
		return nil, errors.New("linter is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl := rules.Parse(opts.Source)
	var msgs []Message
	for _, ar := range l.rules {
		_, fixable := ar.rule.(rules.Fixer)
		for _, f := range ar.rule.Check(tpl, ar.settings) {
			msgs = append(msgs, Message{
				Rule:     ar.rule.ID(),
				Severity: ar.severity,
				FilePath: opts.FilePath,
				ModuleID: opts.ModuleID,
				Line:     f.Line,
				Column:   f.Column,
				Source:   f.Source,
				Message:  f.Message,
				Fixable:  fixable,
			})
		}
	}

	msgs = l.applyPending(opts, msgs)
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Line != msgs[j].Line {
			return msgs[i].Line < msgs[j].Line
		}
		return msgs[i].Column < msgs[j].Column
	})
	return msgs, nil
}

// VerifyAndFix implements Linter. Fixes are applied in passes until the
// output stops changing, so fixing the result again is a no-op.
func (l *TemplateLinter) VerifyAndFix(ctx context.Context, opts Options) (FixOutcome, error) {
	if l == nil {
		return FixOutcome{}, errors.New("linter is nil")
	}

	output := opts.Source
	for pass := 0; pass < maxFixPasses; pass++ {
		next := output
		for _, ar := range l.rules {
			if fixer, ok := ar.rule.(rules.Fixer); ok {
				next = fixer.Fix(next, ar.settings)
			}
		}
		if next == output {
			break
		}
		output = next
	}

	fixedOpts := opts
	fixedOpts.Source = output
	msgs, err := l.Verify(ctx, fixedOpts)
	if err != nil {
		return FixOutcome{}, err
	}
	return FixOutcome{IsFixed: output != opts.Source, Output: output, Messages: msgs}, nil
}
