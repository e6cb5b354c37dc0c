// Package httputil writes JSON responses and translates domain errors into
// HTTP status codes with a caller-safe body.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "rtidesk/pkg/domain-errors"
)

// ErrorBody is the envelope for every failed request.
type ErrorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

// StatusFor maps a domain error code to its HTTP status.
// InvalidState shares 404 with NotFound: callers see "not found or cannot be X".
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound, dErrors.CodeInvalidState:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes a {"message": ...} body.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"message": message})
}

// WriteError writes err without diagnostic detail. Non-domain errors become a
// generic internal error.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err, false)
}

// WriteErrorDetailed behaves like WriteError and, when detailed is true, adds
// the underlying cause so operators can diagnose failures outside production.
func WriteErrorDetailed(w http.ResponseWriter, err error, detailed bool) {
	writeError(w, err, detailed)
}

func writeError(w http.ResponseWriter, err error, detailed bool) {
	body := ErrorBody{
		Error:   string(dErrors.CodeInternal),
		Message: "internal server error",
	}
	de, ok := dErrors.As(err)
	if ok {
		body.Error = string(de.Code)
		body.Message = de.Message
		body.Fields = de.Fields
		if detailed && de.Cause != nil {
			body.Detail = de.Cause.Error()
		}
	} else if detailed && err != nil {
		body.Detail = err.Error()
	}
	WriteJSON(w, StatusFor(dErrors.Code(body.Error)), body)
}
