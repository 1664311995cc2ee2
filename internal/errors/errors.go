package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrPostNotFound is returned when a post is not found.
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	// The two cases share one message on purpose.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserAlreadyExists is returned when a username or email is already taken.
	ErrUserAlreadyExists = errors.New("username or email already exists")
	// ErrInvalidAmount is returned when a payment amount is not a positive number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrPaymentFailed is returned when the payment provider rejects the request.
	ErrPaymentFailed = errors.New("payment initialization failed")
)

// Codes shown on the error page so clients can tell failures apart.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeRateLimited   = "RATE_LIMITED"
	CodeInternal      = "INTERNAL_ERROR"
	CodeUpstream      = "UPSTREAM_ERROR"
)

// ErrorResponse represents a standardized error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	// Internal is logged but never shown to the client.
	Internal error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// WithInternal attaches the underlying cause for server side logging.
func (e *HTTPError) WithInternal(err error) *HTTPError {
	e.Internal = err
	return e
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// Validation builds a 400 for a missing or malformed field.
func Validation(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, CodeValidation)
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, "Post not found", CodeNotFound)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Invalid username or password", CodeUnauthorized)
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, "Username or email already exists", CodeAlreadyExists)
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, "Amount must be a positive number", CodeValidation)
	case errors.Is(err, ErrPaymentFailed):
		return NewHTTPError(http.StatusBadGateway, "Payment could not be started", CodeUpstream).WithInternal(err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "Server Error", CodeInternal).WithInternal(err)
	}
}
