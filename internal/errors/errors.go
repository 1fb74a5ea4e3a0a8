// Package errors defines the application error taxonomy and its mapping to
// HTTP responses.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated is returned when no valid access token accompanies
	// a protected request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials is returned on login with unknown email or wrong
	// password, deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrForbidden is returned when a valid identity lacks the required role.
	ErrForbidden = errors.New("insufficient role")
	// ErrNotFound is returned for an unknown resource id.
	ErrNotFound = errors.New("resource not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUpload is returned when the image store rejects or fails an upload.
	// The enclosing create request fails as a whole.
	ErrUpload = errors.New("image upload failed")
	// ErrStore is returned for persistence failures. Details are logged
	// server-side, never sent to the caller.
	ErrStore = errors.New("storage failure")
	// ErrStoreTimeout is the retryable variant of ErrStore.
	ErrStoreTimeout = errors.New("storage timeout")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// NewValidation builds a single-field validation error.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Store classifies a persistence failure, keeping the cause in the chain.
// Context deadline hits become the retryable timeout variant.
func Store(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}

// Upload wraps an upload adapter failure.
func Upload(err error) error {
	return fmt.Errorf("%w: %v", ErrUpload, err)
}

// ErrorResponse is the wire shape of every error the API emits.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// HTTPError pairs a taxonomy entry with its status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

// MapErrorToHTTP maps a domain error to the HTTP error it is reported as.
// Unknown errors collapse to an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	var validation *ValidationError
	if errors.As(err, &validation) {
		httpErr := NewHTTPError(http.StatusBadRequest, validation.Error(), "VALIDATION_FAILED")
		httpErr.Fields = validation.Fields
		return httpErr
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, ErrEmailTaken.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrUpload):
		return NewHTTPError(http.StatusBadGateway, ErrUpload.Error(), "UPLOAD_FAILED")
	case errors.Is(err, ErrStoreTimeout):
		return NewHTTPError(http.StatusServiceUnavailable, ErrStoreTimeout.Error(), "STORE_TIMEOUT")
	case errors.Is(err, ErrStore):
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "STORE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
