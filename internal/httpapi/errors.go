package httpapi

import (
	"encoding/json"
	"net/http"
)

const (
	codeBadRequest   = "bad_request"
	codeNotFound     = "not_found"
	codeInternal     = "internal_error"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeInvalidCfg   = "invalid_config"
)

// ErrorBody carries the request id so a UI error can be matched to the
// access log line.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// APIError is the envelope every non-2xx JSON response uses.
type APIError struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON encodes v with status. Responses reflect the snapshot of the
// moment, so clients must not cache them.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, APIError{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	}})
}
