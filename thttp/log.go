package thttp

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/ridge/multikey/tlog"
	"go.uber.org/zap"
)

// Log is a middleware that logs every request after it has been handled: at
// Debug level normally, at Warn level for server errors. Handlers get a logger
// with the method and URL of the request.
func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tlog.With(r.Context(),
			zap.String("method", r.Method),
			zap.String("url", r.URL.RequestURI()),
		)
		m := httpsnoop.CaptureMetricsFn(w, func(w http.ResponseWriter) {
			next.ServeHTTP(w, r.WithContext(ctx))
		})

		fields := []zap.Field{
			zap.Int("status", m.Code),
			zap.Int64("bytes", m.Written),
			zap.Duration("elapsed", m.Duration),
		}
		if m.Code >= http.StatusInternalServerError {
			tlog.Get(ctx).Warn("HTTP request failed", fields...)
		} else {
			tlog.Get(ctx).Debug("HTTP request", fields...)
		}
	})
}
