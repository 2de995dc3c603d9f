package bookeo

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrCredentialsMissing is returned when API_KEY or API_SECRET is not set.
	ErrCredentialsMissing = errors.New("API_KEY and API_SECRET must be set")

	// ErrClientClosed is returned when the client is used after Close.
	ErrClientClosed = errors.New("bookeo client is closed")
)

// APIError is a terminal upstream failure: any non-2xx status other than
// 429, which is absorbed by the retry loop and never surfaces.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("bookeo api error (status %d) on %s: %s",
		e.StatusCode, e.Endpoint, e.Message)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
