package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tmplint/internal/results"
)

// FileSink writes structured results to a file: the whole report as one JSON
// document ("json"), or one event per line ("ndjson").
type FileSink struct {
	path   string
	format string
	file   *os.File
	mu     sync.Mutex
	report *results.Report
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json":
			format = "json"
		case ".ndjson", ".jsonl":
			format = "ndjson"
		default:
			return nil, fmt.Errorf("cannot infer output format from file extension %q", ext)
		}
	}

	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &FileSink{
		path:   path,
		format: format,
		file:   f,
	}, nil
}

func (s *FileSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		if r, ok := v.(results.Report); ok {
			s.report = &r
		}
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.file)
		encoder.SetEscapeHTML(false)
		switch t := v.(type) {
		case Event:
			return encoder.Encode(t)
		case results.Report:
			for _, e := range eventsFromReport(t) {
				if err := encoder.Encode(e); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.format == "json" {
		report := results.Report{Files: []results.FileResult{}}
		if s.report != nil {
			report = *s.report
		}
		encoder := json.NewEncoder(s.file)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(report)
	}

	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
