package browser

import "context"

type callResult[V any] struct {
	val V
	err error
}

// call runs fn in a goroutine and waits for it or for ctx, whichever comes
// first. On cancellation fn keeps running and its result is dropped.
func call[V any](ctx context.Context, fn func() (V, error)) (V, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	ch := make(chan callResult[V], 1)
	go func() {
		v, err := fn()
		ch <- callResult[V]{val: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// run is call for functions with no result value.
func run(ctx context.Context, fn func() error) error {
	_, err := call(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
