package batch

import (
	"math"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for scheduler options.
const (
	DefaultConcurrency = 4

	maxBackoffDelay = 30 * time.Second
)

// ProgressFunc is called once per completed item with the number of items
// completed so far, the total number of items in the run and the URL that
// just finished.
type ProgressFunc func(completed, total int, url string)

// Option configures a Scheduler.
type Option func(*schedulerConfig)

type schedulerConfig struct {
	concurrency     int
	maxItems        int
	progress        ProgressFunc
	limiter         *rate.Limiter
	acquireAttempts int
	initialDelay    time.Duration

	// outcomeHook holds a func(Outcome[R]); its type is checked in New
	outcomeHook any
}

func defaultConfig() *schedulerConfig {
	return &schedulerConfig{
		concurrency:     DefaultConcurrency,
		acquireAttempts: 1,
	}
}

// WithConcurrency sets how many items may be in flight at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(cfg *schedulerConfig) {
		if n > 0 {
			cfg.concurrency = n
		}
	}
}

// WithMaxItems truncates the input to its first n URLs. Zero means no limit.
func WithMaxItems(n int) Option {
	return func(cfg *schedulerConfig) {
		if n >= 0 {
			cfg.maxItems = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(cfg *schedulerConfig) {
		cfg.progress = fn
	}
}

// WithRateLimit caps item admissions per second with the given burst.
// Non-positive values leave admission unthrottled.
//
// Example:
//
//	WithRateLimit(2, 1) // at most two new pages per second
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cfg *schedulerConfig) {
		if perSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithAcquireRetry retries an item's acquire when it times out. attempts is
// the total number of tries; the wait before retry n is initialDelay*2^(n-1),
// capped at 30s.
func WithAcquireRetry(attempts int, initialDelay time.Duration) Option {
	return func(cfg *schedulerConfig) {
		if attempts > 0 {
			cfg.acquireAttempts = attempts
		}
		if initialDelay > 0 {
			cfg.initialDelay = initialDelay
		}
	}
}

// WithOutcomeHook registers fn to run once per settled item, after the
// progress callback. R must match the scheduler's report type; New panics
// otherwise.
func WithOutcomeHook[R Report](fn func(Outcome[R])) Option {
	return func(cfg *schedulerConfig) {
		if fn != nil {
			cfg.outcomeHook = fn
		}
	}
}

// calcBackoffDelay returns initialDelay*2^attempt, capped at maxBackoffDelay.
// attempt is 0 for the first retry.
func calcBackoffDelay(initialDelay time.Duration, attempt int) time.Duration {
	if attempt < 0 || initialDelay <= 0 {
		return 0
	}
	delay := float64(initialDelay) * math.Pow(2, float64(attempt))
	if delay > float64(maxBackoffDelay) {
		return maxBackoffDelay
	}
	return time.Duration(delay)
}
