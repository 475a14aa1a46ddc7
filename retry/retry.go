// Package retry repeats operations that fail transiently
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/ridge/multikey/tlog"
	"go.uber.org/zap"
)

// Config is a fixed schedule of attempts
type Config struct {
	TryAfter    time.Duration // delay before the first attempt
	RetryAfter  time.Duration // delay before every further attempt
	MaxAttempts int           // 0 means no limit
}

// ErrRetriable marks an error after which the operation should be tried again
type ErrRetriable struct {
	err error
}

func (r ErrRetriable) Error() string {
	return r.err.Error()
}

// Unwrap returns the wrapped error
func (r ErrRetriable) Unwrap() error {
	return r.err
}

// Retriable marks err as retriable. Returns nil if err is nil.
func Retriable(err error) error {
	if err == nil {
		return nil
	}
	return ErrRetriable{err: err}
}

// Do1 calls f according to c until it returns a result with an error that is
// not retriable (or no error at all), and returns that result.
//
// When the attempts run out, or the context is closed while waiting, the last
// retriable error is returned unwrapped, or the error of the context.
// Consecutive identical errors are logged once.
func Do1[T any](ctx context.Context, c Config, f func() (T, error)) (T, error) {
	logger := tlog.Get(ctx)
	started := time.Now()
	delay := c.TryAfter
	var zero T
	var lastMessage string
	for attempt := 1; ; attempt++ {
		if err := Sleep(ctx, delay); err != nil {
			return zero, err
		}
		delay = c.RetryAfter

		v, err := f()
		var r ErrRetriable
		if !errors.As(err, &r) {
			if attempt > 1 {
				logger.Debug("Retry finished", zap.Int("attempts", attempt), zap.Error(err), zap.Duration("elapsed", time.Since(started)))
			}
			return v, err
		}
		if c.MaxAttempts != 0 && attempt >= c.MaxAttempts {
			logger.Debug("Giving up", zap.Int("attempts", attempt), zap.Error(r.err), zap.Duration("elapsed", time.Since(started)))
			return zero, r.err
		}
		if ctx.Err() != nil && errors.Is(r.err, ctx.Err()) {
			return zero, r.err
		}
		if message := r.err.Error(); message != lastMessage {
			logger.Debug("Will retry", zap.Int("attempt", attempt), zap.Error(r.err))
			lastMessage = message
		}
	}
}
