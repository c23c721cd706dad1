// Package asyncfilter wraps filter.Engine.Process in a single-job,
// cooperative, non-blocking-core task handle (spec §5): the algorithmic
// core never suspends or polls a context itself, it simply runs to
// completion in its own goroutine while the caller races a Wait against
// cancellation or a timeout. Grounded on concurrent/executor.go's
// Config/Result/lifecycle-hook shape, reduced from an N-item worker pool
// down to a one-shot Submit/Wait/Cancel handle.
package asyncfilter

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/onnttf/spsm/filter"
	"github.com/onnttf/spsm/matrix"
)

// Notifier receives lifecycle callbacks, replacing the teacher's
// OnBegin/OnError/OnEnd config fields with a single interface (this
// package has no other logging-library dependency, per spec's ambient
// stack for this concern).
type Notifier interface {
	NotifyBegin(ctx context.Context)
	NotifyError(ctx context.Context, err error)
	NotifyEnd(ctx context.Context, result *Result)
}

// noopNotifier is the default Notifier: it does nothing.
type noopNotifier struct{}

func (noopNotifier) NotifyBegin(context.Context)        {}
func (noopNotifier) NotifyError(context.Context, error) {}
func (noopNotifier) NotifyEnd(context.Context, *Result) {}

// Config configures a single Submit call.
type Config struct {
	// Timeout bounds how long Wait may block before the job is treated
	// as cancelled. Zero means no timeout.
	Timeout time.Duration

	// Notifier receives lifecycle callbacks. Defaults to a no-op.
	Notifier Notifier
}

// Validate checks whether the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("asyncfilter: timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// SetDefaults sets default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Notifier == nil {
		c.Notifier = noopNotifier{}
	}
}

// Result is the outcome of one filter job.
type Result struct {
	Mapping *matrix.CandidateMapping
	Err     error

	Cancelled bool

	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the job's wall-clock running time.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Handle represents one in-flight (or completed) filter job.
type Handle struct {
	config Config
	done   chan struct{}
	result atomic.Pointer[Result]
	cancel context.CancelFunc
}

// Submit starts engine.Process(candidate) on its own goroutine and
// returns immediately with a Handle. The core itself never inspects ctx;
// only Wait and the internal race against cancellation do.
func Submit(ctx context.Context, config Config, engine *filter.Engine, candidate *matrix.CandidateMapping) (*Handle, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.SetDefaults()

	runCtx, cancel := context.WithCancel(ctx)
	if config.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, config.Timeout)
	}

	h := &Handle{
		config: config,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	config.Notifier.NotifyBegin(runCtx)
	go h.run(runCtx, engine, candidate)
	return h, nil
}

type processOutput struct {
	mapping *matrix.CandidateMapping
	err     error
}

func (h *Handle) run(ctx context.Context, engine *filter.Engine, candidate *matrix.CandidateMapping) {
	result := &Result{StartTime: time.Now()}

	defer func() {
		if p := recover(); p != nil {
			result.Err = fmt.Errorf("asyncfilter: panic: %v\n%s", p, debug.Stack())
		}
		result.EndTime = time.Now()
		h.result.Store(result)
		h.config.Notifier.NotifyEnd(ctx, result)
		close(h.done)
	}()

	outCh := make(chan processOutput, 1)
	go func() {
		mapping, err := engine.Process(candidate)
		outCh <- processOutput{mapping: mapping, err: err}
	}()

	select {
	case <-ctx.Done():
		result.Cancelled = true
		result.Err = ctx.Err()
		h.config.Notifier.NotifyError(ctx, ctx.Err())
	case out := <-outCh:
		result.Mapping = out.mapping
		result.Err = out.err
		if out.err != nil {
			h.config.Notifier.NotifyError(ctx, out.err)
		}
	}
}

// Wait blocks until the job finishes or ctx is done, whichever comes
// first. It may be called more than once or from more than one goroutine;
// each call observes the same Result once the job completes.
func (h *Handle) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-h.done:
		return h.result.Load(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel requests early termination of the job. The underlying
// filter.Engine.Process call, having no suspension points, keeps running
// to completion regardless; Cancel only causes Wait (and the Result it
// returns) to observe cancellation sooner.
func (h *Handle) Cancel() {
	h.cancel()
}
