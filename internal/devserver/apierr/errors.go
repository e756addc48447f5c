package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/jeopardyze-client/internal/services/auth"
)

// ErrorResponse is the FastAPI-style error body
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageInvalidToken is the detail of every bearer authentication failure
const MessageInvalidToken = "Invalid authentication token"

// httpError combines an HTTP status code with a detail message
type httpError struct {
	status int
	detail string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.detail
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	if he.status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Detail: he.detail})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, "Incorrect username/email or password"}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return &httpError{http.StatusUnauthorized, MessageInvalidToken}
	case errors.Is(err, auth.ErrNotVerified):
		return &httpError{http.StatusForbidden, "Email is not verified"}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusBadRequest, "Username is already registered"}
	case errors.Is(err, auth.ErrEmailExists):
		return &httpError{http.StatusBadRequest, "Email is already registered"}
	case errors.Is(err, auth.ErrInvalidCode):
		return &httpError{http.StatusBadRequest, "Invalid or expired verification code"}
	case errors.Is(err, auth.ErrUserNotFound):
		return &httpError{http.StatusNotFound, "User not found"}
	case errors.Is(err, auth.ErrPlayerNotFound):
		return &httpError{http.StatusUnauthorized, MessageInvalidToken}
	default:
		return &httpError{http.StatusInternalServerError, "Internal server error"}
	}
}

// NewInvalidRequestError creates a 400 error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, message}
}

// NewUnauthorizedError creates the bearer authentication failure
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, MessageInvalidToken}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, "Internal server error"}
}
