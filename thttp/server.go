package thttp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ridge/multikey/tlog"
	"github.com/ridge/must/v2"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type panicKey struct{}

// Server serves HTTP requests on a listener for as long as the context passed
// to Run is open
type Server struct {
	listener net.Listener
	handler  http.Handler
}

// NewServer creates a Server. The listener is closed by Run.
func NewServer(listener net.Listener, handler http.Handler) *Server {
	return &Server{listener: listener, handler: handler}
}

// ListenAddr returns the address the server listens on
func (s *Server) ListenAddr() net.Addr {
	return s.listener.Addr()
}

// Run serves requests until ctx is closed or a handler panics under Recover.
//
// Requests get contexts carrying the logger of ctx, and they stay open after
// ctx is closed while in-flight requests finish, for up to five seconds.
// Returns the error of ctx after a graceful shutdown, or the panic.
func (s *Server) Run(ctx context.Context) error {
	ctx = tlog.With(ctx, zap.Stringer("httpServer", s.listener.Addr()))
	logger := tlog.Get(ctx)

	panics := make(chan error, 1)
	reqCtx, reqCancel := context.WithCancel(context.WithValue(detach(ctx), panicKey{}, panics))
	defer reqCancel()

	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          must.OK1(zap.NewStdLogAt(logger, zap.WarnLevel)),
		BaseContext:       func(net.Listener) context.Context { return reqCtx },
		ConnContext: func(ctx context.Context, conn net.Conn) context.Context {
			return tlog.With(ctx, zap.Stringer("remoteAddr", conn.RemoteAddr()))
		},
	}

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("serve", parallel.Fail, func(ctx context.Context) error {
			logger.Info("Serving HTTP requests")
			err := server.Serve(s.listener)
			if errors.Is(err, http.ErrServerClosed) && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		})

		spawn("panics", parallel.Fail, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-panics:
				return err
			}
		})

		spawn("shutdown", parallel.Fail, func(ctx context.Context) error {
			<-ctx.Done()
			logger.Info("Shutting down HTTP server")

			shutdownCtx, cancel := context.WithTimeout(reqCtx, shutdownTimeout)
			defer cancel()
			// Errors other than the timeout come from closing the
			// listener and don't matter during shutdown
			if err := server.Shutdown(shutdownCtx); err != nil && shutdownCtx.Err() != nil {
				logger.Warn("HTTP requests still running after shutdown timeout", zap.Error(err))
				_ = server.Close()
				return err
			}
			logger.Info("HTTP server shut down")
			return ctx.Err()
		})
		return nil
	})
}

// detached carries the values of a context but is never closed
type detached struct {
	parent context.Context //nolint:containedctx // only values are used
}

func detach(ctx context.Context) context.Context {
	return detached{parent: ctx}
}

func (detached) Deadline() (time.Time, bool) {
	return time.Time{}, false
}

func (detached) Done() <-chan struct{} {
	return nil
}

func (detached) Err() error {
	return nil
}

func (d detached) Value(key any) any {
	return d.parent.Value(key)
}
