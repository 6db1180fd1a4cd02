package request

import (
	"errors"
	"fmt"
)

// ErrNotSingleObject is returned by GetOne when the endpoint did not
// resolve to exactly one object.
var ErrNotSingleObject = errors.New("expected a single object")

// APIError is a non-2xx response surfaced after orchestration (token
// refresh already attempted where applicable). Status code and raw body
// stay accessible to the caller.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
	URL        string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api error (status %d) on %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("api error (status %d) on %s", e.StatusCode, e.URL)
}

// DecodeError is a response body that could not be decoded as JSON.
type DecodeError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
