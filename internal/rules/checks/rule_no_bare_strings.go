package checks

import (
	"sort"
	"strings"

	"tmplint/internal/rules"
)

// defaultBareStringsAllowlist mirrors the punctuation and entities that are
// never worth translating on their own.
var defaultBareStringsAllowlist = []string{
	"&lpar;", "&rpar;", "&comma;", "&period;", "&amp;", "&AMP;", "&plus;", "&equals;", "&ast;",
	"&midast;", "&sol;", "&num;", "&percnt;", "&excl;", "&quest;", "&colon;", "&lsqb;", "&lbrack;",
	"&rsqb;", "&rbrack;", "&lcub;", "&lbrace;", "&rcub;", "&rbrace;", "&lt;", "&LT;", "&gt;",
	"&GT;", "&bull;", "&bullet;", "&mdash;", "&ndash;", "&nbsp;", "&Tab;", "&NewLine;", "&verbar;",
	"&vert;", "&VerticalLine;",
	"(", ")", ",", ".", "&", "+", "-", "=", "*", "/", "#", "%", "!", "?", ":", "[", "]", "{", "}",
	"<", ">", "•", "—", "–", " ", "|",
}

type NoBareStringsRule struct{}

func (r *NoBareStringsRule) ID() string {
	return "no-bare-strings"
}

func (r *NoBareStringsRule) Title() string {
	return "No Bare Strings"
}

func (r *NoBareStringsRule) Description() string {
	return "Disallows text content that is not passed through a translation helper. Text made only of allowlisted punctuation or entities is accepted."
}

func (r *NoBareStringsRule) Recommended() bool {
	return false
}

func (r *NoBareStringsRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "allowlist",
			Description: "Additional strings accepted as bare text (list).",
		},
	}
}

func (r *NoBareStringsRule) Check(t *rules.Template, opts rules.Settings) []rules.Finding {
	allow := append(append([]string(nil), defaultBareStringsAllowlist...), opts.Strings("allowlist")...)

	var findings []rules.Finding
	for _, n := range t.Nodes {
		if n.Kind != rules.NodeText {
			continue
		}
		if isBareString(t.Text(n), allow) {
			findings = append(findings, t.FindingAt(n, "Non-translated string used"))
		}
	}
	return findings
}

func isBareString(text string, allow []string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	// Longer entries first so "&nbsp;" is consumed before "&".
	for _, entry := range sortedByLength(allow) {
		text = strings.ReplaceAll(text, entry, "")
	}
	return strings.TrimSpace(text) != ""
}

func sortedByLength(list []string) []string {
	out := append([]string(nil), list...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func init() {
	rules.Register(&NoBareStringsRule{})
}
