// Package batch fans a list of URLs out over a pool of leased resources and
// collects one outcome per URL.
//
// A Scheduler admits items in input order, at most Concurrency at a time.
// Each admitted item leases a resource from its Source, hands it to the
// Pipeline and releases it as soon as the pipeline returns, whatever the
// result. Failures and panics are contained to the item that caused them;
// the batch always settles every item.
//
// The scheduler's admission limit and the pool capacity are separate
// bounds. Effective parallelism is the smaller of the two.
//
// # Cancellation
//
// Cancelling the context passed to Run stops admission. Items not yet
// admitted settle as StateSkipped with ErrNotAdmitted, and so do admitted
// items still waiting for a lease. Items that hold a lease run to
// completion on a context detached from the cancellation, so their
// pipeline timeouts still bound them.
//
// # Failures
//
// A panic anywhere in an item's work unit (acquire, pipeline or release)
// settles that item with a *PanicError. Panics in the progress callback or
// the outcome hook are logged and dropped.
//
// # Ordering
//
// Result.Outcomes is in input order. Progress callbacks and outcome hooks
// fire in completion order and may be called from multiple goroutines.
package batch
