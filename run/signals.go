package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ridge/multikey/tlog"
	"go.uber.org/zap"
)

var terminationSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP}

// handleSignals returns on the first termination signal, which closes the
// context of the task. A second signal exits at once without waiting for the
// task to shut down.
func handleSignals(ctx context.Context) error {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, terminationSignals...)

	select {
	case sig := <-signals:
		logger := tlog.Get(ctx)
		logger.Info("Terminating", zap.Stringer("signal", sig))
		go func() {
			sig := <-signals
			logger.Warn("Terminating immediately", zap.Stringer("signal", sig))
			os.Exit(1)
		}()
		return nil
	case <-ctx.Done():
		signal.Stop(signals)
		return ctx.Err()
	}
}
