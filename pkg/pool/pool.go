package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/entrhq/siteaudit/pkg/logging"
	"golang.org/x/sync/semaphore"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("pool")
	if err != nil {
		debugLog.Warnf("Failed to initialize pool logger, using stderr fallback: %v", err)
	}
}

// Resource is a reusable unit managed by a Pool.
type Resource interface {
	// Reset returns the resource to a neutral state for the next lease.
	Reset(ctx context.Context) error
	// Close releases the resource for good.
	Close() error
}

// Factory creates resources on demand.
type Factory[T Resource] interface {
	NewResource(ctx context.Context) (T, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc[T Resource] func(ctx context.Context) (T, error)

// NewResource calls f(ctx).
func (f FactoryFunc[T]) NewResource(ctx context.Context) (T, error) {
	return f(ctx)
}

// Pool bounds and recycles resources of type T.
// It is safe for concurrent use.
type Pool[T Resource] struct {
	cfg     Config
	limit   int
	factory Factory[T]

	sem     *semaphore.Weighted
	permits atomic.Int64

	mu        sync.Mutex
	idle      []T
	live      int // idle + leased + being created
	leased    int
	created   int // lifetime
	discarded int

	closed      atomic.Bool
	closeCtx    context.Context
	closeCancel context.CancelFunc
}

// New creates a pool. Resources are created lazily on Acquire.
func New[T Resource](cfg Config, factory Factory[T]) (*Pool[T], error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: factory is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	closeCtx, closeCancel := context.WithCancel(context.Background())
	p := &Pool[T]{
		cfg:         cfg,
		limit:       cfg.creationLimit(),
		factory:     factory,
		sem:         semaphore.NewWeighted(int64(cfg.MaxResources)),
		idle:        make([]T, 0, cfg.MaxResources),
		closeCtx:    closeCtx,
		closeCancel: closeCancel,
	}
	p.permits.Store(int64(cfg.MaxResources))

	debugLog.Infof("Created pool: capacity=%d acquire_timeout=%s reset_timeout=%s creation_limit=%d",
		cfg.MaxResources, cfg.AcquireTimeout, cfg.ResetTimeout, p.limit)
	return p, nil
}

// Capacity returns the maximum number of concurrently leased resources.
func (p *Pool[T]) Capacity() int {
	return p.cfg.MaxResources
}

// Acquire leases a resource, waiting up to Config.AcquireTimeout for a free
// slot. It reuses an idle resource when one exists and otherwise creates a
// new one.
//
// Errors: ErrPoolClosed if the pool is or becomes closed while waiting, a
// *TimeoutError (matching ErrPoolTimeout) when the deadline passes, ctx.Err()
// when ctx ends first, ErrPoolDegraded past the creation cap, and a
// *CreateError when the factory fails.
func (p *Pool[T]) Acquire(ctx context.Context) (*Lease[T], error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()
	stop := context.AfterFunc(p.closeCtx, cancel)
	defer stop()

	start := time.Now()
	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		switch {
		case p.closed.Load():
			return nil, ErrPoolClosed
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			debugLog.Warnf("Acquire timed out after %s (%s)", time.Since(start).Round(time.Millisecond), p.Stats())
			return nil, &TimeoutError{Timeout: p.cfg.AcquireTimeout}
		}
	}
	p.permits.Add(-1)

	if p.closed.Load() {
		p.restorePermit()
		return nil, ErrPoolClosed
	}

	res, err := p.checkout(ctx)
	if err != nil {
		p.restorePermit()
		return nil, err
	}
	return newLease(p, res), nil
}

// checkout pops an idle resource or creates one. The caller holds a permit.
func (p *Pool[T]) checkout(ctx context.Context) (T, error) {
	var zero T

	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		res := p.idle[n-1]
		p.idle[n-1] = zero
		p.idle = p.idle[:n-1]
		p.leased++
		p.mu.Unlock()
		debugLog.Debugf("Reusing idle resource (%d idle left)", n-1)
		return res, nil
	}
	if p.live >= p.cfg.MaxResources {
		live := p.live
		p.mu.Unlock()
		debugLog.Errorf("Permit held but %d/%d resources live", live, p.cfg.MaxResources)
		return zero, ErrPoolExhausted
	}
	if p.limit >= 0 && p.created >= p.limit {
		p.mu.Unlock()
		debugLog.Errorf("Creation limit %d reached", p.limit)
		return zero, ErrPoolDegraded
	}
	// Reserve the slot so concurrent creators cannot overshoot.
	p.live++
	p.leased++
	p.created++
	n := p.created
	p.mu.Unlock()

	debugLog.Debugf("Creating resource #%d", n)
	res, err := p.factory.NewResource(ctx)
	if err != nil {
		p.mu.Lock()
		p.live--
		p.leased--
		p.created--
		p.mu.Unlock()
		return zero, &CreateError{Err: err}
	}

	if p.closed.Load() {
		p.retire(res, false)
		return zero, ErrPoolClosed
	}
	return res, nil
}

// release resets res and requeues it, or discards it when the reset fails.
// Exactly one permit is restored either way.
func (p *Pool[T]) release(res T) {
	defer p.restorePermit()

	if p.closed.Load() {
		p.retire(res, false)
		return
	}

	if err := p.reset(res); err != nil {
		debugLog.Warnf("Discarding resource after failed reset: %v", err)
		p.retire(res, true)
		return
	}

	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		p.retire(res, false)
		return
	}
	p.idle = append(p.idle, res)
	p.leased--
	idle := len(p.idle)
	p.mu.Unlock()
	debugLog.Debugf("Resource returned to pool (%d idle)", idle)
}

// reset runs res.Reset bounded by Config.ResetTimeout, even when the
// resource ignores its context. A panic in Reset is returned as an error.
func (p *Pool[T]) reset(res T) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.ResetTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		// A panicking reset is a failed reset: the resource is discarded
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("reset panicked: %v", r)
			}
		}()
		done <- res.Reset(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("reset timed out after %s: %w", p.cfg.ResetTimeout, ctx.Err())
	}
}

// retire removes a leased resource from the pool and closes it.
func (p *Pool[T]) retire(res T, discarded bool) {
	p.mu.Lock()
	p.live--
	p.leased--
	if discarded {
		p.discarded++
	}
	p.mu.Unlock()

	if err := res.Close(); err != nil {
		debugLog.Warnf("Failed to close resource: %v", err)
	}
}

func (p *Pool[T]) restorePermit() {
	p.permits.Add(1)
	p.sem.Release(1)
}

// Stats returns a point-in-time snapshot. It never blocks on Acquire.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Capacity:         p.cfg.MaxResources,
		Created:          p.created,
		Live:             p.live,
		Idle:             len(p.idle),
		Leased:           p.leased,
		Discarded:        p.discarded,
		PermitsAvailable: int(p.permits.Load()),
		Degraded:         p.limit >= 0 && p.created >= p.limit,
		Closed:           p.closed.Load(),
	}
}

// Close marks the pool closed, wakes waiters with ErrPoolClosed and closes
// every idle resource. Leased resources are closed when released.
// Calling Close more than once is a no-op.
func (p *Pool[T]) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.closeCancel()

	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.live -= len(idle)
	p.mu.Unlock()

	var errs []error
	for _, res := range idle {
		if err := res.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	debugLog.Infof("Pool closed: %d idle resources closed, %d errors", len(idle), len(errs))
	return errors.Join(errs...)
}

// WithLease acquires a resource, passes it to fn and releases it when fn
// returns, including when fn panics.
func WithLease[T Resource](ctx context.Context, p *Pool[T], fn func(context.Context, T) error) error {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	return fn(ctx, lease.Resource())
}
