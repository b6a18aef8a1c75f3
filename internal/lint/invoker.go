package lint

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tmplint/internal/ctxlog"
)

// ErrNoFixTarget is returned when a fix must be written but the source has no
// file path, as happens for stdin without --filename.
var ErrNoFixTarget = errors.New("cannot write fixes: source has no file path (use --filename with stdin)")

// Invoker runs a Linter over one source and writes fixed output back to disk.
type Invoker struct {
	linter Linter
}

func NewInvoker(l Linter) (*Invoker, error) {
	if l == nil {
		return nil, errors.New("linter is nil")
	}
	return &Invoker{linter: l}, nil
}

// Invoke verifies opts. With fix set it verifies-and-fixes instead; when the
// linter reports the source as fixed the output is written to opts.WritePath
// before returning, and the returned messages describe the fixed content.
func (i *Invoker) Invoke(ctx context.Context, opts Options, fix bool) ([]Message, error) {
	if !fix {
		msgs, err := i.linter.Verify(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", displayPath(opts.FilePath), err)
		}
		return msgs, nil
	}

	outcome, err := i.linter.VerifyAndFix(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fix %s: %w", displayPath(opts.FilePath), err)
	}
	if outcome.IsFixed {
		if err := writeBack(opts.WritePath, outcome.Output); err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("wrote fixes", "path", opts.FilePath, "target", opts.WritePath)
	}
	return outcome.Messages, nil
}

// writeBack overwrites path in place, keeping the existing file mode.
func writeBack(path, output string) error {
	if path == "" {
		return ErrNoFixTarget
	}
	perm := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(output), perm); err != nil {
		return fmt.Errorf("write fixes to %s: %w", path, err)
	}
	return nil
}

func displayPath(p string) string {
	if p == "" {
		return "<stdin>"
	}
	return p
}
