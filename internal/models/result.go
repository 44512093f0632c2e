package models

import "time"

// ErrorType buckets failures by their transport-level cause.
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeClient     ErrorType = "client"
	ErrorTypeServer     ErrorType = "server"
	ErrorTypeValidation ErrorType = "validation"
)

// ErrorResult is the normalized failure object handed to callers. UI code
// never sees raw transport errors, only this shape.
type ErrorResult struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code"`
	ErrorType  ErrorType `json:"error_type"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`

	// Cause carries the underlying error for debugging. It is stripped in
	// production builds and never serialized.
	Cause error `json:"-"`
}
