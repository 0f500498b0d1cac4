package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	dnaAuth "github.com/MrEthical07/dnaAuth"
)

// Error codes carried in JSON error bodies.
const (
	CodeAuthFailed             = "AUTH_FAILED"
	CodeAuthRequired           = "AUTH_REQUIRED"
	CodeInsufficientPermission = "INSUFFICIENT_PERMISSION"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeNotFound               = "NOT_FOUND"
	CodeRateLimited            = "RATE_LIMITED"
	CodeUnavailable            = "SERVICE_UNAVAILABLE"
	CodeInternal               = "INTERNAL_ERROR"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message  string `json:"message"`
	Code     string `json:"code"`
	Sequence string `json:"sequence,omitempty"`
}

// Classify maps an engine error to a status and body. Unknown errors become a
// generic 500 so internals are not echoed to clients.
func Classify(err error) (int, ErrorBody) {
	var failed *dnaAuth.AuthenticationFailedError
	var denied *dnaAuth.InsufficientPermissionError

	switch {
	case errors.As(err, &failed):
		return http.StatusUnauthorized, ErrorBody{
			Message:  "DNA sequence not recognized",
			Code:     CodeAuthFailed,
			Sequence: failed.Sequence,
		}
	case errors.As(err, &denied):
		return http.StatusForbidden, ErrorBody{
			Message: "permission required: " + denied.Permission,
			Code:    CodeInsufficientPermission,
		}
	case errors.Is(err, dnaAuth.ErrLoginThrottled):
		return http.StatusTooManyRequests, ErrorBody{Message: "too many failed logins, try again later", Code: CodeRateLimited}
	case errors.Is(err, dnaAuth.ErrSessionExpired):
		return http.StatusUnauthorized, ErrorBody{Message: "session expired", Code: CodeAuthRequired}
	case errors.Is(err, dnaAuth.ErrAuthenticationRequired):
		return http.StatusUnauthorized, ErrorBody{Message: "authentication required", Code: CodeAuthRequired}
	case errors.Is(err, dnaAuth.ErrStoreUnavailable), errors.Is(err, dnaAuth.ErrEngineNotReady):
		return http.StatusServiceUnavailable, ErrorBody{Message: "session backend unavailable", Code: CodeUnavailable}
	default:
		return http.StatusInternalServerError, ErrorBody{Message: "internal server error", Code: CodeInternal}
	}
}

// WriteError writes the [Classify] result for err.
func WriteError(w http.ResponseWriter, err error) {
	status, body := Classify(err)
	WriteJSON(w, status, body)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
