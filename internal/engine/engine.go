package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"tmplint/internal/config"
	"tmplint/internal/ctxlog"
	"tmplint/internal/lint"
	"tmplint/internal/output"
	"tmplint/internal/results"
	"tmplint/internal/source"
)

func exitCodeForRun(fatal, lintErrors bool) int {
	// Exit code contract:
	// 0 = no errors (warnings allowed)
	// 1 = lint errors reported
	// 2 = fatal error (configuration, read or write failure)
	if fatal {
		return 2
	}
	if lintErrors {
		return 1
	}
	return 0
}

func setupOutputManager(cfg *config.Config, stdout io.Writer) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	format := "text"
	if cfg.Output.JSON {
		format = "json"
	}
	console := output.NewConsoleSink(stdout, format, output.ConsoleOptions{
		Quiet:   cfg.Output.Quiet,
		Verbose: cfg.Output.Verbose,
		NoColor: cfg.Output.NoColor,
	})
	if err := outMgr.AddSink(console); err != nil {
		outMgr.Close()
		return nil, err
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// Engine drives one lint run: build the linter, resolve sources, lint them,
// aggregate, then print either the pending manifest or the report.
type Engine struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	workingDir string

	// newLinter is a test seam. If nil, Engine builds the registry-backed linter.
	newLinter func(opts lint.EngineOptions) (lint.Linter, error)
}

// NewEngine returns an engine bound to the given streams. Nil streams default
// to the process's own.
func NewEngine(stdin io.Reader, stdout, stderr io.Writer) *Engine {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Engine{stdin: stdin, stdout: stdout, stderr: stderr}
}

// WithWorkingDir sets the directory patterns and default config files are
// resolved against. Empty means the process working directory.
func (e *Engine) WithWorkingDir(dir string) *Engine {
	e.workingDir = dir
	return e
}

func (e *Engine) buildLinter(cfg *config.Config) (lint.Linter, error) {
	opts := lint.EngineOptions{
		WorkingDir:   e.workingDir,
		ConfigPath:   cfg.Lint.ConfigPath,
		NoConfigPath: cfg.Lint.NoConfigPath,
		Rules:        cfg.Lint.Rules,
	}
	if cfg.Lint.Config != "" {
		inline, err := config.ParseInlineConfig(cfg.Lint.Config)
		if err != nil {
			return nil, err
		}
		opts.Config = inline
	}

	if e.newLinter != nil {
		return e.newLinter(opts)
	}
	l, err := lint.New(opts)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	log := ctxlog.FromContext(ctx)

	linter, err := e.buildLinter(cfg)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}
	if pk, ok := linter.(interface{ PassthroughKeys() []string }); ok {
		for _, key := range pk.PassthroughKeys() {
			log.Debug("lint config key has no effect on built-in rules", "key", key)
		}
	}
	invoker, err := lint.NewInvoker(linter)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}

	resolver := source.NewResolver(e.workingDir, source.IgnoreOptions{
		Disabled: cfg.Sources.NoIgnorePattern,
		Patterns: cfg.EffectiveIgnorePatterns(),
	})
	refs := resolver.Resolve(ctx, cfg.Sources.Patterns)
	log.Debug("resolved sources", "patterns", len(cfg.Sources.Patterns), "sources", len(refs))

	loader := source.NewLoader(e.workingDir, e.stdin, cfg.Sources.Filename)
	scheduler, err := NewScheduler(loader, invoker, cfg.Runtime.Concurrency, cfg.Lint.Fix)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}

	perSource, err := scheduler.Execute(ctx, refs)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}

	var all []lint.Message
	for _, msgs := range perSource {
		all = append(all, msgs...)
	}
	report := results.Aggregate(all)
	code := exitCodeForRun(false, report.HasErrors())
	log.Debug("aggregated results", "errors", report.ErrorCount, "warnings", report.WarningCount, "files", len(report.Files))

	if cfg.Output.PrintPending {
		if err := output.WritePending(e.stdout, results.BuildPending(report), cfg.Output.JSON); err != nil {
			fmt.Fprintf(e.stderr, "Error writing pending list: %v\n", err)
			return exitCodeForRun(true, false)
		}
		return code
	}

	if report.Clean() {
		return code
	}

	outMgr, err := setupOutputManager(cfg, e.stdout)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false)
	}
	log.Debug("writing report", "sinks", outMgr.Len())

	_ = outMgr.Write(output.Event{Type: output.EventRunStarted, Sources: len(refs)})
	_ = outMgr.Write(report)
	_ = outMgr.Write(output.Event{
		Type:         output.EventRunFinished,
		ErrorCount:   report.ErrorCount,
		WarningCount: report.WarningCount,
		ExitCode:     code,
	})
	if err := outMgr.Close(); err != nil {
		fmt.Fprintf(e.stderr, "Error writing output: %v\n", err)
		return exitCodeForRun(true, false)
	}
	return code
}
