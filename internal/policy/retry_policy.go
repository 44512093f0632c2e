package policy

import (
	"strings"
	"time"
)

// DefaultRetryableStatuses are the HTTP status codes eligible for retry.
var DefaultRetryableStatuses = []int{408, 429, 502, 503, 504}

// DefaultRetryableEndpoints are the path substrings eligible for retry.
var DefaultRetryableEndpoints = []string{"/interactions", "/sites", "/search"}

// RetryPolicy gates retry-with-backoff. A request is retried only when its
// path matches the endpoint allow-list AND the failing status matches the
// retryable set.
type RetryPolicy struct {
	Endpoints   []string
	Statuses    []int
	MaxAttempts int
	BaseDelay   time.Duration
}

// NewRetryPolicy returns the default policy: 3 attempts, 1s base delay.
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		Endpoints:   DefaultRetryableEndpoints,
		Statuses:    DefaultRetryableStatuses,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// RetryablePath reports whether the path is in the endpoint allow-list.
func (p *RetryPolicy) RetryablePath(path string) bool {
	for _, endpoint := range p.Endpoints {
		if strings.Contains(path, endpoint) {
			return true
		}
	}
	return false
}

// RetryableStatus reports whether the status code is retryable.
func (p *RetryPolicy) RetryableStatus(status int) bool {
	for _, s := range p.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Retryable reports whether both the path and status qualify for retry.
func (p *RetryPolicy) Retryable(path string, status int) bool {
	return p.RetryablePath(path) && p.RetryableStatus(status)
}

// Delay returns the backoff before retry number attempt (1-based):
// base * 2^(attempt-1).
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay << (attempt - 1)
}
