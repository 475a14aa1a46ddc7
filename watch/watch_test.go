package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ridge/multikey/retry"
	"github.com/ridge/multikey/test"
	"github.com/ridge/parallel"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, contents <-chan string, expected string) {
	timeout := time.After(10 * time.Second)
	for {
		select {
		case c := <-contents:
			if c == expected {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", expected)
		}
	}
}

func readFile(path string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		data, err := os.ReadFile(path)
		return string(data), err
	}
}

func TestFile(t *testing.T) {
	group := test.Group(t)
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	contents := make(chan string, 100)
	group.Spawn("watch", parallel.Fail, func(ctx context.Context) error {
		return File(ctx, path, readFile(path), func(ctx context.Context, s string) error {
			contents <- s
			return nil
		})
	})
	waitFor(t, contents, "one")

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	waitFor(t, contents, "two")

	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte("three"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	waitFor(t, contents, "three")
}

func TestFileRetries(t *testing.T) {
	saved := ReloadRetry
	ReloadRetry = retry.Config{MaxAttempts: 3}
	t.Cleanup(func() { ReloadRetry = saved })

	group := test.Group(t)
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	calls := 0
	loaded := make(chan int, 100)
	applied := make(chan int, 100)
	group.Spawn("watch", parallel.Fail, func(ctx context.Context) error {
		return File(ctx, path, func(ctx context.Context) (int, error) {
			calls++
			loaded <- calls
			if calls == 2 {
				return 0, errors.New("partial write")
			}
			return calls, nil
		}, func(ctx context.Context, v int) error {
			applied <- v
			return nil
		})
	})
	require.Equal(t, 1, <-loaded)
	require.Equal(t, 1, <-applied)

	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))
	require.Equal(t, 2, <-loaded)
	require.Equal(t, 3, <-loaded)
	require.Equal(t, 3, <-applied)
}

func TestFileApplyFailureKeepsWatching(t *testing.T) {
	group := test.Group(t)
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte("good"), 0o644))

	contents := make(chan string, 100)
	group.Spawn("watch", parallel.Fail, func(ctx context.Context) error {
		return File(ctx, path, readFile(path), func(ctx context.Context, s string) error {
			if s == "bad" {
				return errors.New("rejected")
			}
			contents <- s
			return nil
		})
	})
	waitFor(t, contents, "good")

	require.NoError(t, os.WriteFile(path, []byte("bad"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("better"), 0o644))
	waitFor(t, contents, "better")
}

func TestFileInitialError(t *testing.T) {
	ctx := test.Context(t)
	path := filepath.Join(t.TempDir(), "items.json")

	err := File(ctx, path, readFile(path), func(ctx context.Context, s string) error { return nil })
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	err = File(ctx, path, readFile(path), func(ctx context.Context, s string) error {
		return errors.New("rejected")
	})
	require.EqualError(t, err, "rejected")

	err = File(ctx, filepath.Join(t.TempDir(), "missing", "items.json"), readFile(path), func(ctx context.Context, s string) error {
		return nil
	})
	require.Error(t, err)
}
