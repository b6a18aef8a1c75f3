package checks

import (
	"testing"

	"tmplint/internal/rules"
)

func TestNoBareStringsRule_Check(t *testing.T) {
	rule := &NoBareStringsRule{}

	tests := []struct {
		name    string
		source  string
		opts    rules.Settings
		columns []int
	}{
		{
			name:    "reports each text node",
			source:  "<h2>Here too!!</h2> <div>Bare strings are bad...</div>",
			columns: []int{4, 25},
		},
		{
			name:   "whitespace between tags is fine",
			source: "<div>\n  {{t 'hello'}}\n</div>",
		},
		{
			name:   "punctuation and entities are allowlisted",
			source: "<span>(&nbsp;-&nbsp;)</span>",
		},
		{
			name:   "configured allowlist",
			source: "<span>tmplint</span>",
			opts:   rules.Settings{"allowlist": []any{"tmplint"}},
		},
		{
			name:   "comments and mustaches are not text",
			source: "{{! a comment }}<!-- html -->{{name}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := rule.Check(rules.Parse(tt.source), tt.opts)
			if len(findings) != len(tt.columns) {
				t.Fatalf("want %d findings, got %d: %+v", len(tt.columns), len(findings), findings)
			}
			for i, f := range findings {
				if f.Line != 1 || f.Column != tt.columns[i] {
					t.Errorf("finding %d: want 1:%d, got %d:%d", i, tt.columns[i], f.Line, f.Column)
				}
				if f.Message != "Non-translated string used" {
					t.Errorf("unexpected message %q", f.Message)
				}
			}
		})
	}
}

func TestNoHTMLCommentsRule(t *testing.T) {
	rule := &NoHTMLCommentsRule{}
	src := "<div><!-- first --></div>\n<!--second-->"

	findings := rule.Check(rules.Parse(src), nil)
	if len(findings) != 2 {
		t.Fatalf("want 2 findings, got %d", len(findings))
	}
	if findings[1].Line != 2 || findings[1].Column != 0 {
		t.Fatalf("want second finding at 2:0, got %d:%d", findings[1].Line, findings[1].Column)
	}

	fixed := rule.Fix(src, nil)
	want := "<div>{{!-- first --}}</div>\n{{!--second--}}"
	if fixed != want {
		t.Fatalf("want %q, got %q", want, fixed)
	}
	if again := rule.Fix(fixed, nil); again != fixed {
		t.Fatalf("fix is not idempotent: %q", again)
	}
	if n := len(rule.Check(rules.Parse(fixed), nil)); n != 0 {
		t.Fatalf("fixed output still has %d findings", n)
	}
}

func TestNoTrailingSpacesRule(t *testing.T) {
	rule := &NoTrailingSpacesRule{}
	src := "<div>  \r\n\t<p>ok</p>\t\n</div>"

	findings := rule.Check(rules.Parse(src), nil)
	if len(findings) != 2 {
		t.Fatalf("want 2 findings, got %d: %+v", len(findings), findings)
	}
	if findings[0].Line != 1 || findings[0].Column != 5 {
		t.Errorf("want first finding at 1:5, got %d:%d", findings[0].Line, findings[0].Column)
	}
	if findings[1].Line != 2 || findings[1].Column != 10 {
		t.Errorf("want second finding at 2:10, got %d:%d", findings[1].Line, findings[1].Column)
	}

	fixed := rule.Fix(src, nil)
	if want := "<div>\r\n\t<p>ok</p>\n</div>"; fixed != want {
		t.Fatalf("want %q, got %q", want, fixed)
	}
	if rule.Fix(fixed, nil) != fixed {
		t.Fatalf("fix is not idempotent")
	}
}

func TestNoTrailingSpacesRule_SkipBlankLines(t *testing.T) {
	rule := &NoTrailingSpacesRule{}
	src := "<div>\n   \n<p>x</p> \n</div>"
	opts := rules.Settings{"skipBlankLines": true}

	findings := rule.Check(rules.Parse(src), opts)
	if len(findings) != 1 || findings[0].Line != 3 {
		t.Fatalf("want one finding on line 3, got %+v", findings)
	}
	if got, want := rule.Fix(src, opts), "<div>\n   \n<p>x</p>\n</div>"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if n := len(rule.Check(rules.Parse(src), nil)); n != 2 {
		t.Fatalf("blank line should be reported without the option, got %d findings", n)
	}
}

func TestNoTripleCurliesRule(t *testing.T) {
	rule := &NoTripleCurliesRule{}
	findings := rule.Check(rules.Parse("{{safe}} {{{unsafe}}}"), nil)
	if len(findings) != 1 || findings[0].Column != 9 {
		t.Fatalf("want one finding at column 9, got %+v", findings)
	}
}

func TestBuiltinRulesAreRegistered(t *testing.T) {
	for _, id := range []string{"no-bare-strings", "no-html-comments", "no-trailing-spaces", "no-triple-curlies"} {
		if _, ok := rules.Get(id); !ok {
			t.Errorf("rule %s is not registered", id)
		}
	}
}
