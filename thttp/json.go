package thttp

import (
	"encoding/json"
	"net/http"

	"github.com/ridge/multikey/tlog"
	"go.uber.org/zap"
)

// ErrorBody is the body of every error response
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes body encoded as JSON with the given status code
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		tlog.Get(r.Context()).Info("Failed to write response", zap.Error(err))
	}
}

// WriteError writes an ErrorBody carrying the message of err
func WriteError(w http.ResponseWriter, r *http.Request, status int, err error) {
	WriteJSON(w, r, status, ErrorBody{Error: err.Error()})
}
