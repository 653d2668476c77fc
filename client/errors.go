package client

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-errors"
)

// ErrUnauthorized is returned after the server rejected the session
var ErrUnauthorized = errors.New("session rejected by the server", errors.CategoryAuth).
	WithTextCode("UNAUTHORIZED").
	WithCode(errors.CodeUnauthorized)

// ErrMissingCredentials is returned by Login before any request is made
var ErrMissingCredentials = errors.New("Please fill in all fields", errors.CategoryValidation).
	WithTextCode("MISSING_CREDENTIALS")

// ErrLoginFailed is returned when a login response carries no token
var ErrLoginFailed = errors.New("Login failed. Please try again.", errors.CategoryAuth).
	WithTextCode("LOGIN_FAILED")

// APIError describes a failed request. Status is 0 when the server
// could not be reached.
type APIError struct {
	Status   int
	Message  string
	TextCode string
	Method   string
	Path     string

	fromBody bool
	cause    error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// ServerMessage returns the message found in the response body
func (e *APIError) ServerMessage() (string, bool) {
	if e == nil || !e.fromBody {
		return "", false
	}
	return e.Message, true
}

// Network reports a transport failure
func (e *APIError) Network() bool {
	return e.Status == 0
}

type errorBody struct {
	Message  string `json:"message"`
	Error    string `json:"error"`
	TextCode string `json:"text_code"`
}

func newAPIError(method, path string, status int, body errorBody) *APIError {
	apiErr := &APIError{
		Status:   status,
		TextCode: body.TextCode,
		Method:   method,
		Path:     path,
		fromBody: true,
	}

	switch {
	case body.Message != "":
		apiErr.Message = body.Message
	case body.Error != "":
		apiErr.Message = body.Error
	default:
		apiErr.Message = http.StatusText(status)
		apiErr.fromBody = false
	}

	if status == http.StatusUnauthorized {
		apiErr.cause = ErrUnauthorized
	}

	return apiErr
}

func networkError(method, path string, err error) *APIError {
	return &APIError{
		Method:  method,
		Path:    path,
		Message: err.Error(),
		cause:   err,
	}
}
