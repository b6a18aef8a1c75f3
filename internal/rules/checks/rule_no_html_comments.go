package checks

import (
	"strings"

	"tmplint/internal/rules"
)

type NoHTMLCommentsRule struct{}

func (r *NoHTMLCommentsRule) ID() string {
	return "no-html-comments"
}

func (r *NoHTMLCommentsRule) Title() string {
	return "No HTML Comments"
}

func (r *NoHTMLCommentsRule) Description() string {
	return "Disallows HTML comments, which are shipped to the browser. Use template comments ({{! }}) instead. Fixable: comments are converted to template comments."
}

func (r *NoHTMLCommentsRule) Recommended() bool {
	return true
}

func (r *NoHTMLCommentsRule) Check(t *rules.Template, opts rules.Settings) []rules.Finding {
	var findings []rules.Finding
	for _, n := range t.Nodes {
		if n.Kind == rules.NodeHTMLComment {
			findings = append(findings, t.FindingAt(n, "HTML comment detected"))
		}
	}
	return findings
}

// Fix rewrites <!-- x --> as {{!-- x --}}.
func (r *NoHTMLCommentsRule) Fix(source string, opts rules.Settings) string {
	t := rules.Parse(source)
	var b strings.Builder
	last := 0
	for _, n := range t.Nodes {
		if n.Kind != rules.NodeHTMLComment {
			continue
		}
		body := strings.TrimSuffix(strings.TrimPrefix(t.Text(n), "<!--"), "-->")
		b.WriteString(source[last:n.Start])
		b.WriteString("{{!--")
		b.WriteString(strings.ReplaceAll(body, "--}}", "-- }}"))
		b.WriteString("--}}")
		last = n.End
	}
	if last == 0 {
		return source
	}
	b.WriteString(source[last:])
	return b.String()
}

func init() {
	rules.Register(&NoHTMLCommentsRule{})
}
