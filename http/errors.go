package http

import (
	"fmt"
)

// maxErrorBody bounds how much of a response body is echoed in Error().
const maxErrorBody = 512

// HTTPError indicates a non-2xx HTTP response.
type HTTPError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// Body is the response body
	Body []byte
}

// Error returns a string representation of the HTTP error.
func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status %d: %s", e.StatusCode, e.BodyString())
}

// BodyString returns the response body, truncated for display.
func (e *HTTPError) BodyString() string {
	if len(e.Body) > maxErrorBody {
		return string(e.Body[:maxErrorBody]) + "..."
	}
	return string(e.Body)
}

// IsSuccess checks if status code is a success (2xx).
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// IsClientError checks if status code is a client error (4xx).
func IsClientError(statusCode int) bool {
	return statusCode >= 400 && statusCode < 500
}

// IsServerError checks if status code is a server error (5xx).
func IsServerError(statusCode int) bool {
	return statusCode >= 500 && statusCode < 600
}
