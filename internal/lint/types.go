package lint

import (
	"context"
	"path/filepath"
)

// TemplateExtension is the only file type linted. Module ids strip exactly
// this many trailing characters from a file path.
const TemplateExtension = ".hbs"

type Severity int

const (
	SeverityWarning Severity = 1
	SeverityError   Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "off"
	}
}

// Message is one rule violation. Line is 1-based, Column 0-based.
type Message struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	FilePath string   `json:"filePath"`
	ModuleID string   `json:"moduleId,omitempty"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Source   string   `json:"source,omitempty"`
	Message  string   `json:"message"`
	Fixable  bool     `json:"isFixable,omitempty"`
}

// Options describes one source handed to a Linter.
type Options struct {
	Source   string
	FilePath string
	ModuleID string

	// WritePath is where fixed output is written. FilePath stays the reported
	// path; WritePath is the file actually read, or empty when there is none.
	WritePath string
}

// FixOutcome is the result of VerifyAndFix. Output differs from the input
// source only when IsFixed is true.
type FixOutcome struct {
	IsFixed  bool
	Output   string
	Messages []Message
}

// Linter is the rule engine the pipeline drives.
type Linter interface {
	// Verify lints opts.Source without changing it.
	Verify(ctx context.Context, opts Options) ([]Message, error)

	// VerifyAndFix applies every available fix and reports the messages that
	// remain in the fixed output.
	VerifyAndFix(ctx context.Context, opts Options) (FixOutcome, error)
}

// ModuleID derives the module id of a file path: the path with its trailing
// template extension removed, slash-separated. Paths too short to carry the
// extension yield "".
func ModuleID(filePath string) string {
	if len(filePath) < len(TemplateExtension) {
		return ""
	}
	return filepath.ToSlash(filePath[:len(filePath)-len(TemplateExtension)])
}
