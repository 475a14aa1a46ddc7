package thttp

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS is a middleware that lets pages from any origin query the API. The API
// is read-only, so only GET and HEAD pass preflight, and no credentials are
// involved. Browsers may cache preflight results for ten minutes.
var CORS = handlers.CORS(
	handlers.AllowedOrigins([]string{"*"}),
	handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead}),
	handlers.AllowedHeaders([]string{"Cache-Control", "If-None-Match"}),
	handlers.ExposedHeaders([]string{"Content-Encoding", "Content-Length"}),
	handlers.MaxAge(600),
)
