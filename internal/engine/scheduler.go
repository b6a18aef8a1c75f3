package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tmplint/internal/ctxlog"
	"tmplint/internal/lint"
	"tmplint/internal/source"
)

type sourceLoader interface {
	Load(ctx context.Context, ref source.Ref) (lint.Options, error)
}

type sourceInvoker interface {
	Invoke(ctx context.Context, opts lint.Options, fix bool) ([]lint.Message, error)
}

// Scheduler runs the load, lint and optional fix cycle for every source on a
// bounded pool of workers.
type Scheduler struct {
	loader      sourceLoader
	invoker     sourceInvoker
	concurrency int
	fix         bool
}

func NewScheduler(loader sourceLoader, invoker sourceInvoker, concurrency int, fix bool) (*Scheduler, error) {
	if loader == nil {
		return nil, errors.New("loader is nil")
	}
	if invoker == nil {
		return nil, errors.New("invoker is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Scheduler{loader: loader, invoker: invoker, concurrency: concurrency, fix: fix}, nil
}

// Execute returns the messages of each ref, slotted by the ref's index so the
// outcome does not depend on completion order.
//
// A source's fix is written before its messages are recorded. The first load,
// lint or write error cancels the remaining work and is returned; sources
// already in flight finish their current step.
func (s *Scheduler) Execute(ctx context.Context, refs []source.Ref) ([][]lint.Message, error) {
	if ctx == nil {
		return nil, errors.New("context is nil")
	}
	if s == nil {
		return nil, errors.New("scheduler is nil")
	}

	log := ctxlog.FromContext(ctx)
	out := make([][]lint.Message, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, ref := range refs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			opts, err := s.loader.Load(gctx, ref)
			if err != nil {
				return err
			}
			msgs, err := s.invoker.Invoke(gctx, opts, s.fix)
			if err != nil {
				return err
			}
			log.Debug("linted source", "path", ref.Path, "messages", len(msgs))
			out[i] = msgs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
