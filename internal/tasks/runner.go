// Package tasks runs fire-and-forget background jobs. Jobs are independent,
// never awaited by the submitting request, and their failures are only logged.
package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner executes submitted jobs on detached goroutines. The zero value is
// not usable; construct with New.
type Runner struct {
	baseCtx    context.Context
	cancel     context.CancelFunc
	jobTimeout time.Duration
	wg         sync.WaitGroup
}

// New creates a Runner. jobTimeout bounds each job; zero means five minutes.
func New(jobTimeout time.Duration) *Runner {
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{baseCtx: ctx, cancel: cancel, jobTimeout: jobTimeout}
}

// Submit schedules fn on its own goroutine. The job context is detached from
// any request context, so a finished request cannot cancel enrichment work.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("background job panicked", "job", name, "panic", rec)
			}
		}()

		ctx, cancel := context.WithTimeout(r.baseCtx, r.jobTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			slog.Warn("background job failed", "job", name, "error", err)
			return
		}
		slog.Debug("background job finished", "job", name)
	}()
}

// Close cancels outstanding jobs and waits up to grace for them to exit.
func (r *Runner) Close(grace time.Duration) {
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		slog.Warn("background jobs did not finish before shutdown grace expired")
	}
}
