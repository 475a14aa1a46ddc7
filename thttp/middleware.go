package thttp

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// Middleware wraps an HTTP handler
type Middleware func(http.Handler) http.Handler

// Wrap installs middleware on handler. The first middleware listed sees the
// request first.
func Wrap(handler http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// Compress is a middleware that compresses responses with gzip or deflate if
// the client accepts it
func Compress(next http.Handler) http.Handler {
	return handlers.CompressHandler(next)
}

// StandardMiddleware wraps a read-only JSON API with Log, Recover, CORS and
// Compress, in this order. Log sees the final status, including the 500 of a
// recovered panic.
func StandardMiddleware(next http.Handler) http.Handler {
	return Wrap(next, Log, Recover, CORS, Compress)
}
