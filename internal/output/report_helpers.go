package output

import (
	"fmt"
	"sort"
	"strings"

	"tmplint/internal/lint"
	"tmplint/internal/results"
)

type ruleStats struct {
	Rule     string
	Errors   int
	Warnings int
	Fixable  int
	Files    []string
}

func (r *ruleStats) Total() int {
	return r.Errors + r.Warnings
}

// computeRuleStats groups messages by rule, most frequent first.
func computeRuleStats(r results.Report) []*ruleStats {
	byRule := make(map[string]*ruleStats)
	for _, f := range r.Files {
		for _, m := range f.Messages {
			rs, ok := byRule[m.Rule]
			if !ok {
				rs = &ruleStats{Rule: m.Rule}
				byRule[m.Rule] = rs
			}
			switch m.Severity {
			case lint.SeverityError:
				rs.Errors++
			case lint.SeverityWarning:
				rs.Warnings++
			}
			if m.Fixable {
				rs.Fixable++
			}
			if len(rs.Files) == 0 || rs.Files[len(rs.Files)-1] != displayPath(f.FilePath) {
				rs.Files = append(rs.Files, displayPath(f.FilePath))
			}
		}
	}

	out := make([]*ruleStats, 0, len(byRule))
	for _, rs := range byRule {
		out = append(out, rs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total() != out[j].Total() {
			return out[i].Total() > out[j].Total()
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}

type fileStats struct {
	Path     string
	Errors   int
	Warnings int
}

// computeFileStats orders files by error count, then warnings, then path.
func computeFileStats(r results.Report) []fileStats {
	out := make([]fileStats, 0, len(r.Files))
	for _, f := range r.Files {
		fs := fileStats{Path: displayPath(f.FilePath)}
		for _, m := range f.Messages {
			if m.Severity == lint.SeverityError {
				fs.Errors++
			} else {
				fs.Warnings++
			}
		}
		out = append(out, fs)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Errors != out[j].Errors {
			return out[i].Errors > out[j].Errors
		}
		if out[i].Warnings != out[j].Warnings {
			return out[i].Warnings > out[j].Warnings
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func formatFileList(files []string, max int) string {
	if len(files) == 0 {
		return ""
	}
	if len(files) <= max {
		return fmt.Sprintf("%d files (%s)", len(files), strings.Join(files, ", "))
	}
	return fmt.Sprintf("%d files (%s, +%d more)", len(files), strings.Join(files[:max], ", "), len(files)-max)
}

// mdCell makes s safe inside a Markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
