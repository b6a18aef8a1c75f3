package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"tmplint/internal/lint"
	"tmplint/internal/results"
)

// ConsoleOptions controls how a ConsoleSink renders a report.
type ConsoleOptions struct {
	// Quiet drops warnings from the output. Counts in the summary follow.
	Quiet bool

	// Verbose prints the offending source below each message.
	Verbose bool

	// NoColor disables ANSI colors regardless of the terminal.
	NoColor bool
}

// ConsoleSink prints a results.Report for humans ("text") or as a JSON object
// keyed by file path ("json").
type ConsoleSink struct {
	writer io.Writer
	format string // "text", "json"
	opts   ConsoleOptions
	mu     sync.Mutex
	report *results.Report

	errColor  *color.Color
	warnColor *color.Color
	dimColor  *color.Color
	sumColor  *color.Color
}

func NewConsoleSink(w io.Writer, format string, opts ConsoleOptions) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer:    w,
		format:    format,
		opts:      opts,
		errColor:  color.New(color.FgRed),
		warnColor: color.New(color.FgYellow),
		dimColor:  color.New(color.Faint),
		sumColor:  color.New(color.FgRed, color.Bold),
	}
	if opts.NoColor {
		for _, c := range []*color.Color{s.errColor, s.warnColor, s.dimColor, s.sumColor} {
			c.DisableColor()
		}
	}
	return s
}

// Write buffers the report; events are ignored on the console.
func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t := v.(type) {
	case results.Report:
		r := filterReport(t, s.opts.Quiet)
		s.report = &r
	case *results.Report:
		if t != nil {
			r := filterReport(*t, s.opts.Quiet)
			s.report = &r
		}
	}
	return nil
}

// Close renders the buffered report, if any.
func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.report == nil {
		if s.format != "text" && s.format != "json" {
			return fmt.Errorf("unsupported console format: %s", s.format)
		}
		return nil
	}

	var err error
	switch s.format {
	case "json":
		err = s.writeJSON(*s.report)
	case "text":
		err = s.writeText(*s.report)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	if err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) writeText(r results.Report) error {
	var b bytes.Buffer

	for _, f := range r.Files {
		if len(f.Messages) == 0 {
			continue
		}
		b.WriteString(displayPath(f.FilePath))
		b.WriteString("\n")
		for _, m := range f.Messages {
			sev := s.warnColor.Sprint("warning")
			if m.Severity == lint.SeverityError {
				sev = s.errColor.Sprint("error")
			}
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
				s.dimColor.Sprintf("%d:%d", m.Line, m.Column), sev, m.Message, s.dimColor.Sprint(m.Rule))
			if s.opts.Verbose && m.Source != "" {
				fmt.Fprintf(&b, "  %s\n", m.Source)
			}
		}
		b.WriteString("\n")
	}

	total := r.ErrorCount + r.WarningCount
	if total > 0 {
		b.WriteString(s.sumColor.Sprintf("✖ %d %s (%d %s, %d %s)",
			total, plural(total, "problem"),
			r.ErrorCount, plural(r.ErrorCount, "error"),
			r.WarningCount, plural(r.WarningCount, "warning")))
		b.WriteString("\n")
	}
	if r.FixableCount > 0 {
		fmt.Fprintf(&b, "  %d %s potentially fixable with the `--fix` option.\n",
			r.FixableCount, plural(r.FixableCount, "problem"))
	}

	_, err := s.writer.Write(b.Bytes())
	return err
}

// writeJSON prints {"path": [messages...]} with keys in report order.
func (s *ConsoleSink) writeJSON(r results.Report) error {
	var b bytes.Buffer
	b.WriteString("{")
	first := true
	for _, f := range r.Files {
		if len(f.Messages) == 0 {
			continue
		}
		key, err := marshalNoEscape(f.FilePath)
		if err != nil {
			return err
		}
		msgs, err := marshalNoEscape(f.Messages)
		if err != nil {
			return err
		}
		if !first {
			b.WriteString(",")
		}
		first = false
		b.WriteString("\n  ")
		b.Write(key)
		b.WriteString(": ")
		if err := json.Indent(&b, msgs, "  ", "  "); err != nil {
			return err
		}
	}
	if !first {
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	_, err := s.writer.Write(b.Bytes())
	return err
}

// filterReport drops warnings when quiet is set and recounts.
func filterReport(r results.Report, quiet bool) results.Report {
	if !quiet {
		return r
	}
	var msgs []lint.Message
	for _, f := range r.Files {
		for _, m := range f.Messages {
			if m.Severity == lint.SeverityError {
				msgs = append(msgs, m)
			}
		}
	}
	return results.Aggregate(msgs)
}

func displayPath(p string) string {
	if p == "" {
		return "<stdin>"
	}
	return p
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}
