// Package watch reloads files when they change on disk
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ridge/multikey/retry"
	"github.com/ridge/multikey/tlog"
	"github.com/ridge/must/v2"
	"go.uber.org/zap"
)

// ReloadRetry is the schedule of load attempts after a change. Editors often
// write files in several steps, so a load may observe a partial file.
var ReloadRetry = retry.Config{
	TryAfter:    50 * time.Millisecond,
	RetryAfter:  200 * time.Millisecond,
	MaxAttempts: 5,
}

// File loads the file at path and passes the result to apply, then does the
// same every time the file is written, created or renamed into place, until
// the context is closed.
//
// The directory of the file is watched rather than the file itself, so that
// replacing the file by renaming is noticed.
//
// An error from the first load or apply is returned. After a change, load is
// retried according to ReloadRetry. If it still fails, or apply fails, the
// error is logged, the previous value stays in effect and watching continues.
func File[T any](ctx context.Context, path string, load func(ctx context.Context) (T, error), apply func(ctx context.Context, v T) error) error {
	path = filepath.Clean(path)
	logger := tlog.Get(ctx).With(zap.String("path", path))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		must.OK(w.Close())
	}()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	v, err := load(ctx)
	if err != nil {
		return err
	}
	if err := apply(ctx, v); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.Events:
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("File changed", zap.Stringer("op", event.Op))
			v, err := retry.Do1(ctx, ReloadRetry, func() (T, error) {
				v, err := load(ctx)
				return v, retry.Retriable(err)
			})
			if err == nil {
				err = apply(ctx, v)
			}
			switch {
			case err == nil:
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				logger.Warn("Failed to reload file", zap.Error(err))
			}
		case err := <-w.Errors:
			return err
		}
	}
}
