package rules

type Rule interface {
	ID() string
	Title() string
	Description() string

	// Recommended reports whether the rule is enabled by `extends: recommended`.
	Recommended() bool

	// Check inspects a parsed template and returns one Finding per violation.
	// Rules MUST NOT touch the filesystem; everything they need is in the template.
	Check(t *Template, opts Settings) []Finding
}

// Fixer is implemented by rules that can rewrite a source to remove their own
// violations. Fix must be idempotent: fixing already-fixed output returns it unchanged.
type Fixer interface {
	Rule
	Fix(source string, opts Settings) string
}

type Option struct {
	Name        string
	Description string
	Default     string
}

// ConfigurableRule documents the options a rule reads from its Settings.
type ConfigurableRule interface {
	Rule
	Options() []Option
}

// Finding is one violation reported by a rule. Line is 1-based, Column is
// 0-based, both pointing at the start of the offending node.
type Finding struct {
	Line    int
	Column  int
	Message string
	Source  string
}

// Settings holds the options configured for a rule, e.g. `["error", {"allowlist": ["x"]}]`.
type Settings map[string]any

// Strings returns the option as a string list. Single strings are promoted to
// a one-element list; anything else yields nil.
func (s Settings) Strings(name string) []string {
	switch v := s[name].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Bool returns the option as a bool, or def when unset or not a bool.
func (s Settings) Bool(name string, def bool) bool {
	if v, ok := s[name].(bool); ok {
		return v
	}
	return def
}
