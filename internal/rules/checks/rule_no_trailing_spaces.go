package checks

import (
	"strings"
	"unicode/utf8"

	"tmplint/internal/rules"
)

type NoTrailingSpacesRule struct{}

func (r *NoTrailingSpacesRule) ID() string {
	return "no-trailing-spaces"
}

func (r *NoTrailingSpacesRule) Title() string {
	return "No Trailing Spaces"
}

func (r *NoTrailingSpacesRule) Description() string {
	return "Disallows spaces and tabs at the end of a line. Fixable."
}

func (r *NoTrailingSpacesRule) Recommended() bool {
	return false
}

func (r *NoTrailingSpacesRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "skipBlankLines",
			Description: "Accept lines made only of whitespace (bool, default false).",
		},
	}
}

func (r *NoTrailingSpacesRule) Check(t *rules.Template, opts rules.Settings) []rules.Finding {
	skipBlank := opts.Bool("skipBlankLines", false)

	var findings []rules.Finding
	for i, line := range strings.Split(t.Source, "\n") {
		body := strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimRight(body, " \t")
		if len(trimmed) == len(body) || (skipBlank && trimmed == "") {
			continue
		}
		findings = append(findings, rules.Finding{
			Line:    i + 1,
			Column:  utf8.RuneCountInString(trimmed),
			Message: "line has trailing whitespace",
			Source:  body,
		})
	}
	return findings
}

func (r *NoTrailingSpacesRule) Fix(source string, opts rules.Settings) string {
	skipBlank := opts.Bool("skipBlankLines", false)

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		cr := strings.HasSuffix(line, "\r")
		body := strings.TrimSuffix(line, "\r")
		if skipBlank && strings.TrimRight(body, " \t") == "" {
			continue
		}
		line = strings.TrimRight(body, " \t")
		if cr {
			line += "\r"
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func init() {
	rules.Register(&NoTrailingSpacesRule{})
}
