package jubsdk

import "context"

// Callback receives the outcome of an asynchronous call.
type Callback[T any] func(T, error)

// Async runs op on a new goroutine and hands its result to cb exactly once.
// Async itself returns immediately, so cb never runs on the caller's stack.
// A nil cb discards the result.
func Async[T any](ctx context.Context, op func(context.Context) (T, error), cb Callback[T]) {
	go func() {
		v, err := op(ctx)
		if cb != nil {
			cb(v, err)
		}
	}()
}
