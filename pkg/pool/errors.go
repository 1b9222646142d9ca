package pool

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPoolTimeout is matched by errors returned when no resource became
	// available before the acquire deadline. Callers may retry.
	ErrPoolTimeout = errors.New("pool: timed out waiting for a resource")

	// ErrPoolClosed is returned when the pool was closed before or while
	// waiting for a resource.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrPoolExhausted signals broken permit accounting: a permit was held
	// but no capacity slot was free. It should never be observed.
	ErrPoolExhausted = errors.New("pool: exhausted despite held permit")

	// ErrPoolDegraded is returned once the lifetime creation cap has been
	// reached and no idle resource is available.
	ErrPoolDegraded = errors.New("pool: resource creation limit reached")

	// ErrInvalidConfig is wrapped by Config.Validate failures.
	ErrInvalidConfig = errors.New("pool: invalid config")
)

// TimeoutError reports how long Acquire waited before giving up.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pool: no resource available within %s", e.Timeout)
}

// Is makes errors.Is(err, ErrPoolTimeout) true for a *TimeoutError.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrPoolTimeout
}

// CreateError wraps a factory failure.
type CreateError struct {
	Err error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("pool: create resource: %v", e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether an Acquire failure may succeed if tried again.
// Only timeouts are retryable; closed, exhausted and degraded pools are not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPoolTimeout)
}
