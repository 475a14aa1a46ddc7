package thttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(handler http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func preflight(method string) *http.Request {
	r := httptest.NewRequest(http.MethodOptions, "http://localhost/items", nil)
	r.Header.Set("Origin", "http://dashboard.example")
	r.Header.Set("Access-Control-Request-Method", method)
	return r
}

func TestCORS(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("[]"))
		assert.NoError(t, err)
	}))

	w := serve(handler, preflight(http.MethodGet))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	require.Empty(t, w.Body.Bytes())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		require.Equal(t, http.StatusMethodNotAllowed, serve(handler, preflight(method)).Code, method)
	}

	r := preflight(http.MethodGet)
	r.Header.Set("Access-Control-Request-Headers", "Authorization")
	require.Equal(t, http.StatusForbidden, serve(handler, r).Code)

	r = httptest.NewRequest(http.MethodGet, "http://localhost/items", nil)
	r.Header.Set("Origin", "http://dashboard.example")
	w = serve(handler, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Content-Encoding,Content-Length", w.Header().Get("Access-Control-Expose-Headers"))
	require.Equal(t, "[]", w.Body.String())
}

func TestCompress(t *testing.T) {
	body := strings.Repeat(`{"id":"a"}`, 100)
	handler := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(body))
		assert.NoError(t, err)
	}))

	r := httptest.NewRequest(http.MethodGet, "http://localhost/items", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	require.Equal(t, "gzip", serve(handler, r).Header().Get("Content-Encoding"))

	w := serve(handler, httptest.NewRequest(http.MethodGet, "http://localhost/items", nil))
	require.Empty(t, w.Header().Get("Content-Encoding"))
	require.Equal(t, body, w.Body.String())
}
