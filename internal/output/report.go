package output

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"tmplint/internal/lint"
	"tmplint/internal/results"
)

// ReportSink writes a Markdown summary of the run.
type ReportSink struct {
	path         string
	file         *os.File
	mu           sync.Mutex
	report       results.Report
	sources      int
	exitCode     int
	haveExitCode bool
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{
		path: path,
		file: f,
	}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case results.Report:
		s.report = t
	case Event:
		switch t.Type {
		case EventRunStarted:
			s.sources = t.Sources
		case EventRunFinished:
			s.exitCode = t.ExitCode
			s.haveExitCode = true
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.report
	var b strings.Builder
	b.WriteString("# Template Lint Report\n\n")

	// --- Summary ---
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("| --- | ---: |\n")
	if s.sources > 0 {
		fmt.Fprintf(&b, "| Sources linted | %d |\n", s.sources)
	}
	fmt.Fprintf(&b, "| Files with problems | %d |\n", len(r.Files))
	fmt.Fprintf(&b, "| Errors | %d |\n", r.ErrorCount)
	fmt.Fprintf(&b, "| Warnings | %d |\n", r.WarningCount)
	fmt.Fprintf(&b, "| Fixable | %d |\n", r.FixableCount)
	if s.haveExitCode {
		fmt.Fprintf(&b, "| Exit code | %d |\n", s.exitCode)
	}
	b.WriteString("\n")

	// --- Rules ---
	b.WriteString("## Problems by rule\n\n")
	ruleStats := computeRuleStats(r)
	if len(ruleStats) == 0 {
		b.WriteString("- None\n\n")
	} else {
		b.WriteString("| Rule | Errors | Warnings | Fixable | Files |\n")
		b.WriteString("| --- | ---: | ---: | ---: | --- |\n")
		for _, rs := range ruleStats {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n",
				rs.Rule, rs.Errors, rs.Warnings, rs.Fixable, mdCell(formatFileList(rs.Files, 3)))
		}
		b.WriteString("\n")
	}

	// --- Files ---
	b.WriteString("## Files\n\n")
	fileStats := computeFileStats(r)
	if len(fileStats) == 0 {
		b.WriteString("- None\n\n")
	} else {
		b.WriteString("| File | Errors | Warnings |\n")
		b.WriteString("| --- | ---: | ---: |\n")
		for _, fs := range fileStats {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", mdCell(fs.Path), fs.Errors, fs.Warnings)
		}
		b.WriteString("\n")
	}

	// --- Details ---
	b.WriteString("## Details\n\n")
	for _, f := range r.Files {
		fmt.Fprintf(&b, "### %s\n\n", displayPath(f.FilePath))
		b.WriteString("| Line | Column | Severity | Rule | Message |\n")
		b.WriteString("| ---: | ---: | --- | --- | --- |\n")
		for _, m := range f.Messages {
			sev := "warning"
			if m.Severity == lint.SeverityError {
				sev = "**error**"
			}
			fmt.Fprintf(&b, "| %d | %d | %s | %s | %s |\n", m.Line, m.Column, sev, m.Rule, mdCell(m.Message))
		}
		b.WriteString("\n")
	}

	if _, err := s.file.WriteString(b.String()); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
