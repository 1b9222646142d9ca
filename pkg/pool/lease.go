package pool

import (
	"sync/atomic"
	"time"
)

// Lease is exclusive ownership of one pooled resource. The holder must call
// Release exactly once; extra calls are ignored.
type Lease[T Resource] struct {
	pool       *Pool[T]
	res        T
	acquiredAt time.Time
	released   atomic.Bool
}

func newLease[T Resource](p *Pool[T], res T) *Lease[T] {
	return &Lease[T]{
		pool:       p,
		res:        res,
		acquiredAt: time.Now(),
	}
}

// Resource returns the leased resource. It panics after Release.
func (l *Lease[T]) Resource() T {
	if l.released.Load() {
		panic("pool: use of released lease")
	}
	return l.res
}

// Release hands the resource back to the pool. It blocks until the soft
// reset finishes or times out, so pool state is settled on return.
func (l *Lease[T]) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.pool.release(l.res)
}

// Released reports whether Release has been called.
func (l *Lease[T]) Released() bool {
	return l.released.Load()
}

// Held returns how long the lease has been held.
func (l *Lease[T]) Held() time.Duration {
	return time.Since(l.acquiredAt)
}
