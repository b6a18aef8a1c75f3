package source

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"tmplint/internal/config"
	"tmplint/internal/ctxlog"
	"tmplint/internal/lint"
)

// StdinPath is the sentinel path used for standard input.
const StdinPath = "/dev/stdin"

// Ref identifies one lintable source.
type Ref struct {
	// Pattern is the argument that produced this ref.
	Pattern string

	// Path is the path used for reporting and module ids: relative to the
	// resolver root when the pattern was relative.
	Path string

	// Resolved is the canonical absolute path, or StdinPath. Content is read
	// from and fixes are written to this path.
	Resolved string

	// Stdin marks the standard-input source.
	Stdin bool
}

// IgnoreOptions controls which glob matches are dropped.
type IgnoreOptions struct {
	// Disabled turns off ignore patterns and .gitignore handling entirely.
	Disabled bool

	// Patterns are doublestar globs matched against root-relative,
	// slash-separated paths. Nil means config.DefaultIgnorePatterns.
	Patterns []string
}

// Resolver turns positional arguments into the set of sources to lint.
type Resolver struct {
	root   string
	ignore IgnoreOptions
}

// NewResolver returns a resolver expanding relative patterns against root.
// An empty root means the process working directory.
func NewResolver(root string, opts IgnoreOptions) *Resolver {
	return &Resolver{root: root, ignore: opts}
}

// IsStdinPattern reports whether a positional argument selects stdin.
func IsStdinPattern(p string) bool {
	return p == "-" || p == StdinPath
}

// Resolve expands patterns into an ordered, duplicate-free list of refs.
//
// An empty pattern list, or any stdin pattern anywhere in the list, yields the
// single stdin ref and nothing else. Otherwise each pattern is globbed on its
// own; malformed patterns and unreadable directories silently contribute no
// matches. Only template files survive, and a path matched by several patterns
// is kept once, at its first position.
func (r *Resolver) Resolve(ctx context.Context, patterns []string) []Ref {
	log := ctxlog.FromContext(ctx)

	if len(patterns) == 0 {
		return []Ref{stdinRef("")}
	}
	for _, p := range patterns {
		if IsStdinPattern(p) {
			return []Ref{stdinRef(p)}
		}
	}

	root := r.root
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		}
	}

	filter := r.newIgnoreFilter(root)
	seen := make(map[string]struct{})
	var refs []Ref

	for _, pattern := range patterns {
		absPattern := pattern
		if !filepath.IsAbs(pattern) {
			absPattern = filepath.Join(root, pattern)
		}
		matches, err := expand(absPattern)
		if err != nil {
			log.Debug("glob failed", "pattern", pattern, "error", err)
			continue
		}

		added := 0
		for _, match := range matches {
			if !strings.HasSuffix(match, lint.TemplateExtension) {
				continue
			}
			if st, err := os.Stat(match); err != nil || st.IsDir() {
				continue
			}
			rel, relErr := filepath.Rel(root, match)
			if relErr != nil {
				rel = match
			}
			if filter.ignored(filepath.ToSlash(rel)) {
				continue
			}

			key := canonical(match)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			display := match
			if !filepath.IsAbs(pattern) && relErr == nil {
				display = rel
			}
			refs = append(refs, Ref{Pattern: pattern, Path: display, Resolved: key})
			added++
		}
		log.Debug("expanded pattern", "pattern", pattern, "matches", len(matches), "added", added)
	}

	return refs
}

// expand globs pattern in lexical order; a match that is a directory stands
// for every template file beneath it.
func expand(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil {
			continue
		}
		if !st.IsDir() {
			out = append(out, m)
			continue
		}
		nested, err := doublestar.FilepathGlob(filepath.Join(m, "**", "*"+lint.TemplateExtension))
		if err != nil {
			continue
		}
		out = append(out, nested...)
	}
	slices.Sort(out)
	return out, nil
}

func stdinRef(pattern string) Ref {
	return Ref{Pattern: pattern, Path: StdinPath, Resolved: StdinPath, Stdin: true}
}

// canonical resolves symlinks so two spellings of one file share a key.
func canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return filepath.Clean(abs)
}

type ignoreFilter struct {
	root     string
	patterns []string
	// gitignores caches the compiled .gitignore of each root-relative
	// directory; nil marks a directory without one.
	gitignores map[string]*ignore.GitIgnore
}

func (r *Resolver) newIgnoreFilter(root string) *ignoreFilter {
	if r.ignore.Disabled {
		return &ignoreFilter{}
	}
	f := &ignoreFilter{root: root, patterns: r.ignore.Patterns, gitignores: make(map[string]*ignore.GitIgnore)}
	if len(f.patterns) == 0 {
		f.patterns = config.DefaultIgnorePatterns
	}
	return f
}

// ignored reports whether the root-relative slash path rel is excluded by an
// ignore pattern or by a .gitignore in the root or any directory between the
// root and the file. Paths outside the root are checked against patterns only.
func (f *ignoreFilter) ignored(rel string) bool {
	for _, p := range f.patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	if f.gitignores == nil || path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}

	dir := ""
	rest := rel
	for {
		if gi := f.gitignoreIn(dir); gi != nil && gi.MatchesPath(rest) {
			return true
		}
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return false
		}
		dir = path.Join(dir, rest[:i])
		rest = rest[i+1:]
	}
}

func (f *ignoreFilter) gitignoreIn(dir string) *ignore.GitIgnore {
	if gi, ok := f.gitignores[dir]; ok {
		return gi
	}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(f.root, filepath.FromSlash(dir), ".gitignore"))
	if err != nil {
		gi = nil
	}
	f.gitignores[dir] = gi
	return gi
}
