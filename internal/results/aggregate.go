package results

import "tmplint/internal/lint"

// FileResult holds the messages reported for one source, in the order the
// linter produced them.
type FileResult struct {
	FilePath string         `json:"filePath"`
	Messages []lint.Message `json:"messages"`
}

// Report is the aggregated outcome of a run.
type Report struct {
	ErrorCount   int          `json:"errorCount"`
	WarningCount int          `json:"warningCount"`
	FixableCount int          `json:"fixableCount"`
	Files        []FileResult `json:"files"`
}

// Aggregate folds a flat message list into a Report. Files are ordered by the
// first message that mentions them; message order within a file is kept.
// The same input always produces the same Report.
func Aggregate(msgs []lint.Message) Report {
	var r Report
	index := make(map[string]int)

	for _, m := range msgs {
		switch m.Severity {
		case lint.SeverityError:
			r.ErrorCount++
		case lint.SeverityWarning:
			r.WarningCount++
		}
		if m.Fixable {
			r.FixableCount++
		}

		i, ok := index[m.FilePath]
		if !ok {
			i = len(r.Files)
			index[m.FilePath] = i
			r.Files = append(r.Files, FileResult{FilePath: m.FilePath})
		}
		r.Files[i].Messages = append(r.Files[i].Messages, m)
	}

	return r
}

// Clean reports whether the run found neither errors nor warnings. Reporters
// are not invoked for a clean report.
func (r Report) Clean() bool {
	return r.ErrorCount == 0 && r.WarningCount == 0
}

// HasErrors reports whether any message has error severity.
func (r Report) HasErrors() bool {
	return r.ErrorCount > 0
}
