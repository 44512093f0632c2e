package transport

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/apierr"
	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/metrics"
	"github.com/bsalter/interactions-client/internal/policy"
)

// RetryTransport wraps requests with conditional retry-with-backoff and the
// single token-refresh-and-replay path for 401 responses.
type RetryTransport struct {
	next   http.RoundTripper
	policy *policy.RetryPolicy
	tokens interfaces.TokenSource // nil disables the 401 recovery path
	logger *zap.Logger
	sleep  func(time.Duration)
}

// NewRetryTransport wraps next with the retry layer.
func NewRetryTransport(next http.RoundTripper, retryPolicy *policy.RetryPolicy, tokens interfaces.TokenSource, logger *zap.Logger) *RetryTransport {
	return &RetryTransport{
		next:   next,
		policy: retryPolicy,
		tokens: tokens,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// SetSleepForTest replaces the backoff sleep so tests run instantly.
func (t *RetryTransport) SetSleepForTest(sleep func(time.Duration)) {
	t.sleep = sleep
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Buffer the body up front so the request can be replayed.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	refreshed := false
	attempt := 1
	for {
		resp, err := t.next.RoundTrip(cloneRequest(req, bodyBytes))
		if err != nil {
			// Transport failures are never retried; tag them for the
			// classifier.
			return nil, &apierr.NetworkError{Err: err}
		}

		// Exactly one refresh-and-replay, regardless of the retry
		// allow-list. A replay does not consume a retry attempt.
		if resp.StatusCode == http.StatusUnauthorized && !refreshed && t.tokens != nil {
			refreshed = true
			token, refreshErr := t.tokens.Refresh(req.Context())
			if refreshErr != nil {
				t.logger.Warn("Token refresh failed, propagating 401", zap.Error(refreshErr))
				return resp, nil
			}
			drain(resp)
			req.Header.Set("Authorization", "Bearer "+token.AccessToken)
			t.logger.Debug("Replaying request with refreshed token",
				zap.String("path", req.URL.Path))
			continue
		}

		if t.policy.Retryable(req.URL.Path, resp.StatusCode) && attempt < t.policy.MaxAttempts {
			drain(resp)
			metrics.RecordRetry(strconv.Itoa(resp.StatusCode))
			delay := t.policy.Delay(attempt)
			t.logger.Debug("Retrying request",
				zap.String("path", req.URL.Path),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			t.sleep(delay)
			attempt++
			continue
		}

		return resp, nil
	}
}

// cloneRequest copies req with a fresh body reader so it can be resent.
func cloneRequest(req *http.Request, body []byte) *http.Request {
	clone := req.Clone(req.Context())
	if body != nil {
		clone.Body = io.NopCloser(bytes.NewReader(body))
		clone.ContentLength = int64(len(body))
	}
	return clone
}

// drain discards a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
