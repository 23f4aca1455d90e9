package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeMethodNotAllow  = "method_not_allowed"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodePayloadTooLarge = "payload_too_large"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps the service error taxonomy onto HTTP. Internal
// errors are logged and answered with a generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, models.ErrBadRequest):
		writeBadRequest(w, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		s.logger.WithError(err).WithField("request_id", requestIDFrom(r.Context())).Error("Request failed")
		writeInternalError(w, "internal server error")
	}
}

// decodeJSON reads a JSON request body into v. Oversized bodies yield 413,
// malformed ones 400; false means a response was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return false
		}
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}
