package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tmplint/internal/ctxlog"
	"tmplint/internal/lint"
)

// Loader reads the content of a Ref.
type Loader struct {
	root     string
	stdin    io.Reader
	filename string
}

// NewLoader returns a loader that drains stdin for the stdin ref and reports
// it under filename (which may be empty). A relative filename is written back
// against root; an empty root means the process working directory.
func NewLoader(root string, stdin io.Reader, filename string) *Loader {
	return &Loader{root: root, stdin: stdin, filename: filename}
}

// Load returns the lint options for ref.
//
// Reading stdin blocks until the stream is closed; there is no timeout and ctx
// is not consulted while draining. Read errors are returned as-is for the
// caller to treat as fatal.
func (l *Loader) Load(ctx context.Context, ref Ref) (lint.Options, error) {
	if ref.Stdin {
		if l.stdin == nil {
			return lint.Options{}, errors.New("read stdin: no input stream")
		}
		b, err := io.ReadAll(l.stdin)
		if err != nil {
			return lint.Options{}, fmt.Errorf("read stdin: %w", err)
		}
		ctxlog.FromContext(ctx).Debug("read stdin", "bytes", len(b), "filename", l.filename)
		return lint.Options{
			Source:    string(b),
			FilePath:  l.filename,
			ModuleID:  lint.ModuleID(l.filename),
			WritePath: l.stdinTarget(),
		}, nil
	}

	target := ref.Resolved
	if target == "" {
		target = ref.Path
	}
	b, err := os.ReadFile(target)
	if err != nil {
		return lint.Options{}, fmt.Errorf("read %s: %w", ref.Path, err)
	}
	return lint.Options{Source: string(b), FilePath: ref.Path, ModuleID: lint.ModuleID(ref.Path), WritePath: target}, nil
}

func (l *Loader) stdinTarget() string {
	if l.filename == "" || filepath.IsAbs(l.filename) || l.root == "" {
		return l.filename
	}
	return filepath.Join(l.root, l.filename)
}
