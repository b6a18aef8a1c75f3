package checks

import "tmplint/internal/rules"

type NoTripleCurliesRule struct{}

func (r *NoTripleCurliesRule) ID() string {
	return "no-triple-curlies"
}

func (r *NoTripleCurliesRule) Title() string {
	return "No Triple Curlies"
}

func (r *NoTripleCurliesRule) Description() string {
	return "Disallows {{{ }}}, which renders unescaped HTML and opens the door to XSS."
}

func (r *NoTripleCurliesRule) Recommended() bool {
	return true
}

func (r *NoTripleCurliesRule) Check(t *rules.Template, opts rules.Settings) []rules.Finding {
	var findings []rules.Finding
	for _, n := range t.Nodes {
		if n.Kind == rules.NodeMustache && n.Triple {
			findings = append(findings, t.FindingAt(n, "Usage of triple curly brackets is unsafe"))
		}
	}
	return findings
}

func init() {
	rules.Register(&NoTripleCurliesRule{})
}
