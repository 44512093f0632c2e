// Package apierr defines the tagged error types produced by the transport
// pipeline and the classifier that converts them into the normalized result
// object callers receive.
package apierr

import (
	"fmt"
	"sort"
	"strings"
)

// NetworkError marks a failure to reach the backend at all (no HTTP status).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ClientError marks a 4xx response.
type ClientError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error %d: %s", e.StatusCode, e.Message)
}

// ServerError marks a 5xx or otherwise unclassified response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// ValidationError marks a local (pre-request) validation failure. It never
// reaches the transport.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrNoToken signals that no credential is available. Callers decide whether
// to proceed unauthenticated or fail.
var ErrNoToken = fmt.Errorf("no access token available")

// userMessages are the per-code messages surfaced for well-known client
// errors.
var userMessages = map[int]string{
	401: "Your session has expired. Please sign in again.",
	403: "You do not have permission to perform this action.",
	404: "The requested record could not be found.",
	422: "The submitted data could not be processed.",
}

// MessageFor returns the user-facing message for an HTTP status code.
func MessageFor(status int) string {
	if msg, ok := userMessages[status]; ok {
		return msg
	}
	switch {
	case status == 0:
		return "Unable to reach the server. Check your connection and try again."
	case status >= 400 && status < 500:
		return "The request could not be completed."
	default:
		return "Something went wrong on our end. Please try again later."
	}
}

// FromResponse converts a non-2xx HTTP response into a tagged error.
func FromResponse(status int, body []byte) error {
	switch {
	case status >= 400 && status < 500:
		return &ClientError{StatusCode: status, Message: MessageFor(status), Body: body}
	default:
		return &ServerError{StatusCode: status, Message: MessageFor(status)}
	}
}
