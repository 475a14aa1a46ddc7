// Package test provides contexts and goroutine groups for tests, with loggers
// writing to the test log
package test

import (
	"context"
	"errors"
	"testing"

	"github.com/ridge/multikey/tlog"
	"github.com/ridge/parallel"
	"github.com/stretchr/testify/assert"
)

// Context returns a context carrying a test logger. The context is closed when
// the test finishes.
func Context(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(tlog.WithLogger(context.Background(), tlog.NewForTesting(t)))
	t.Cleanup(cancel)
	return ctx
}

// Group returns a parallel.Group running under Context(t).
//
// When the test finishes, the group is shut down and waited for. An error
// other than the one of the closed context fails the test.
func Group(t testing.TB) *parallel.Group {
	group := parallel.NewGroup(Context(t))
	t.Cleanup(func() {
		group.Exit(nil)
		if err := group.Wait(); !errors.Is(err, context.Canceled) {
			assert.NoError(t, err, "background task failed")
		}
	})
	return group
}
