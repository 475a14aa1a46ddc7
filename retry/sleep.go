package retry

import (
	"context"
	"time"
)

// Sleep waits for d to pass or ctx to close, whichever is first. Returns the
// error of the context in the latter case. A non-positive d returns at once.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
