// Package fanout runs independent per-item work on a bounded worker pool
// and collects the results in input order.
package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// PanicError wraps a value recovered from a panicking worker
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panic: %v", e.Value)
}

// Map calls fn once per item using at most limit concurrent workers.
// out[i] always holds the result for items[i]. A panicking call is
// converted by recoverFn instead of crashing the batch.
func Map[I, O any](
	ctx context.Context,
	items []I,
	limit int,
	fn func(ctx context.Context, item I) O,
	recoverFn func(item I, err error) O,
) []O {
	out := make([]O, len(items))
	if len(items) == 0 {
		return out
	}

	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					out[i] = recoverFn(item, &PanicError{Value: r})
				}
			}()
			out[i] = fn(ctx, item)
			return nil
		})
	}

	// workers never return errors
	_ = g.Wait()

	return out
}
