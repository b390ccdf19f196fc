package browser

import (
	"context"
	"time"
)

// TimeoutMs converts the smaller of def and ctx's remaining time into the
// millisecond value Playwright options take. Zero def with no deadline
// means no timeout. An expired context yields 1ms so Playwright fails fast
// instead of waiting forever.
func TimeoutMs(ctx context.Context, def time.Duration) float64 {
	d := def
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); d <= 0 || remaining < d {
			d = remaining
		}
	} else if d <= 0 {
		return 0
	}

	ms := float64(d.Milliseconds())
	if ms < 1 {
		return 1
	}
	return ms
}

// ContextErr prefers the context's error over a Playwright one, so callers can
// tell cancellation from a UI failure.
func ContextErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
