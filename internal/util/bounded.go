package util

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("upstream call timed out")

// Bounded runs fn with a deadline. If fn ignores ctx and hangs, Bounded
// still returns ErrTimeout once the deadline passes; fn's goroutine is
// left to finish on its own. A deadline error reported by fn itself is
// also ErrTimeout.
func Bounded[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		if errors.Is(r.err, context.DeadlineExceeded) {
			return r.v, ErrTimeout
		}
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

// BoundedErr is Bounded for calls that only return an error.
func BoundedErr(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	_, err := Bounded(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
