package core

import (
	"net/http"
)

// UpstreamHTTPError reports a non-2xx answer from the fleet API. The upstream
// status code is propagated to the caller unchanged.
type UpstreamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	return "Cartrack API error: " + e.Body
}

// InternalError covers every other failure: transport errors, timeouts and
// malformed upstream bodies. It is always reported as a 500.
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError wraps err, keeping its message as the caller-visible detail.
func NewInternalError(err error) *InternalError {
	return &InternalError{Message: err.Error(), Err: err}
}

func (e *InternalError) Error() string {
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status reported to callers.
func (e *InternalError) StatusCode() int {
	return http.StatusInternalServerError
}
