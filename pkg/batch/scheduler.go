package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/entrhq/siteaudit/pkg/logging"
	"github.com/entrhq/siteaudit/pkg/pool"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("batch")
	if err != nil {
		debugLog.Warnf("Failed to initialize batch logger, using stderr fallback: %v", err)
	}
}

// Pipeline audits one URL with a leased resource. It must return a usable
// report whenever the error is nil.
type Pipeline[T pool.Resource, R Report] interface {
	Audit(ctx context.Context, res T, url string) (R, error)
}

// PipelineFunc adapts a function to the Pipeline interface.
type PipelineFunc[T pool.Resource, R Report] func(ctx context.Context, res T, url string) (R, error)

// Audit calls f(ctx, res, url).
func (f PipelineFunc[T, R]) Audit(ctx context.Context, res T, url string) (R, error) {
	return f(ctx, res, url)
}

// Source leases resources. *pool.Pool satisfies it.
type Source[T pool.Resource] interface {
	Acquire(ctx context.Context) (*pool.Lease[T], error)
}

// Scheduler runs batches against a Source.
type Scheduler[T pool.Resource, R Report] struct {
	source   Source[T]
	pipeline Pipeline[T, R]
	cfg      *schedulerConfig
	hook     func(Outcome[R])
}

// New creates a Scheduler. It panics if a WithOutcomeHook option was given
// for a different report type.
func New[T pool.Resource, R Report](source Source[T], pipeline Pipeline[T, R], opts ...Option) *Scheduler[T, R] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Scheduler[T, R]{
		source:   source,
		pipeline: pipeline,
		cfg:      cfg,
	}
	if cfg.outcomeHook != nil {
		hook, ok := cfg.outcomeHook.(func(Outcome[R]))
		if !ok {
			var zero R
			panic(fmt.Sprintf("batch: outcome hook type %T does not match report type %T", cfg.outcomeHook, zero))
		}
		s.hook = hook
	}

	if c, ok := source.(interface{ Capacity() int }); ok && cfg.concurrency > c.Capacity() {
		debugLog.Warnf("Concurrency %d exceeds pool capacity %d; effective parallelism is %d",
			cfg.concurrency, c.Capacity(), c.Capacity())
	}
	return s
}

// Run audits urls and returns one outcome per admitted-or-skipped URL.
// It returns once every admitted item has settled.
func (s *Scheduler[T, R]) Run(ctx context.Context, urls []string) *Result[R] {
	items := urls
	if s.cfg.maxItems > 0 && len(items) > s.cfg.maxItems {
		items = items[:s.cfg.maxItems]
	}
	total := len(items)

	res := &Result[R]{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome[R], total),
	}
	for i, url := range items {
		res.Outcomes[i] = Outcome[R]{Index: i, URL: url, State: StatePending}
	}

	debugLog.Infof("Run %s: starting %d URLs with concurrency %d", res.RunID, total, s.cfg.concurrency)

	admission := semaphore.NewWeighted(int64(s.cfg.concurrency))
	work := context.WithoutCancel(ctx)
	var completed atomic.Int64
	var g errgroup.Group

	admitted := 0
	for i := range items {
		if err := s.admit(ctx, admission); err != nil {
			debugLog.Warnf("Run %s: admission stopped after %d of %d items: %v", res.RunID, admitted, total, err)
			break
		}
		o := &res.Outcomes[i]
		o.State = StateAdmitted
		g.Go(func() error {
			defer admission.Release(1)
			s.runItem(ctx, work, o, total, &completed)
			return nil
		})
		admitted++
	}

	if admitted < total {
		cause := context.Cause(ctx)
		for i := admitted; i < total; i++ {
			o := &res.Outcomes[i]
			o.State = StateSkipped
			o.Err = fmt.Errorf("%w: %v", ErrNotAdmitted, cause)
			if s.hook != nil {
				s.hook(*o)
			}
		}
	}

	_ = g.Wait()

	res.Duration = time.Since(res.StartedAt)
	res.Summary = Summarize(res.Outcomes, res.Duration)
	debugLog.Infof("Run %s: %d/%d succeeded, %d passed, %d errored, %d skipped in %s",
		res.RunID, res.Summary.Succeeded, total, res.Summary.Passed, res.Summary.Errored,
		res.Summary.Skipped, res.Duration.Round(time.Millisecond))
	return res
}

// admit blocks until the item may start or ctx ends.
func (s *Scheduler[T, R]) admit(ctx context.Context, admission *semaphore.Weighted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.limiter != nil {
		if err := s.cfg.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return admission.Acquire(ctx, 1)
}

// runItem settles one admitted item. The lease is acquired on ctx so a
// cancelled run does not wait out the acquire timeout; the pipeline runs on
// work, which is detached from cancellation.
func (s *Scheduler[T, R]) runItem(ctx, work context.Context, o *Outcome[R], total int, completed *atomic.Int64) {
	start := time.Now()
	o.State = StateRunning

	report, err := s.process(ctx, work, o.URL)
	o.Report = report
	o.Err = err
	o.Duration = time.Since(start)
	o.State = StateCompleted
	if errors.Is(err, ErrNotAdmitted) {
		o.State = StateSkipped
	}

	n := int(completed.Add(1))
	if err != nil {
		debugLog.Warnf("[%d/%d] Failed: %s - %v", n, total, o.URL, err)
	} else {
		debugLog.Infof("[%d/%d] Completed: %s in %s", n, total, o.URL, o.Duration.Round(time.Millisecond))
	}

	if s.cfg.progress != nil {
		callback("progress", o.URL, func() { s.cfg.progress(n, total, o.URL) })
	}
	if s.hook != nil {
		callback("outcome hook", o.URL, func() { s.hook(*o) })
	}
}

// callback runs a user callback once. A panic is logged and dropped so the
// item stays settled.
func callback(name, url string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			debugLog.Errorf("%s panicked for %s: %v\nstack trace:\n%s", name, url, r, stack())
		}
	}()
	fn()
}

// process leases a resource, runs the pipeline and always releases the
// lease. A panic anywhere in the work unit, including the acquire and the
// release, becomes a *PanicError.
func (s *Scheduler[T, R]) process(ctx, work context.Context, url string) (report R, err error) {
	defer func() {
		if r := recover(); r != nil {
			trace := stack()
			debugLog.Errorf("Panic while auditing %s: %v\nstack trace:\n%s", url, r, trace)
			var zero R
			report = zero
			err = &PanicError{URL: url, Value: r, Stack: trace}
		}
	}()

	lease, err := s.acquire(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return report, fmt.Errorf("%w: cancelled while waiting for a resource: %v", ErrNotAdmitted, err)
		}
		return report, err
	}
	defer lease.Release()

	report, err = s.pipeline.Audit(work, lease.Resource(), url)
	if err != nil {
		return report, &TaskError{URL: url, Err: err}
	}
	return report, nil
}

func stack() []byte {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return buf[:n]
}

// acquire leases a resource, retrying timeouts with exponential backoff.
func (s *Scheduler[T, R]) acquire(ctx context.Context) (*pool.Lease[T], error) {
	attempts := max(s.cfg.acquireAttempts, 1)

	var err error
	for attempt := range attempts {
		if attempt > 0 {
			delay := calcBackoffDelay(s.cfg.initialDelay, attempt-1)
			debugLog.Debugf("Retrying acquire in %s (attempt %d/%d)", delay, attempt+1, attempts)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var lease *pool.Lease[T]
		lease, err = s.source.Acquire(ctx)
		if err == nil {
			return lease, nil
		}
		if !pool.IsRetryable(err) {
			return nil, err
		}
	}
	return nil, err
}
