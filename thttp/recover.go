package thttp

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/felixge/httpsnoop"
	"github.com/ridge/multikey/tlog"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

var errInternal = errors.New("internal error")

// Recover is a middleware that turns a panic in a handler into a 500 response
// with an ErrorBody, unless the handler has already started responding.
//
// Under Server, the panic also shuts the server down and becomes the error
// returned by Run: the collection being served can't be trusted any more.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var responded bool
		tracked := httpsnoop.Wrap(w, httpsnoop.Hooks{
			WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
				return func(code int) {
					responded = true
					next(code)
				}
			},
			Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
				return func(b []byte) (int, error) {
					responded = true
					return next(b)
				}
			},
		})

		defer func() {
			p := recover()
			if p == nil {
				return
			}
			err := parallel.ErrPanic{Value: p, Stack: debug.Stack()}
			tlog.Get(r.Context()).Error("Panic in HTTP handler", zap.Error(err))
			if !responded {
				WriteError(w, r, http.StatusInternalServerError, errInternal)
			}
			reportPanic(r.Context(), err)
		}()
		next.ServeHTTP(tracked, r)
	})
}

func reportPanic(ctx context.Context, err error) {
	panics, ok := ctx.Value(panicKey{}).(chan error)
	if !ok {
		return
	}
	select {
	case panics <- err:
	default: // another panic is already shutting the server down
	}
}
