package transport

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/bsalter/interactions-client/internal/apierr"
	"github.com/bsalter/interactions-client/internal/interfaces/mock"
	"github.com/bsalter/interactions-client/internal/policy"
)

func newRetryTransport(tokens *mock.MockTokenSource) (*RetryTransport, *[]time.Duration) {
	var sleeps []time.Duration
	var rt *RetryTransport
	if tokens != nil {
		rt = NewRetryTransport(http.DefaultTransport, policy.NewRetryPolicy(), tokens, zap.NewNop())
	} else {
		rt = NewRetryTransport(http.DefaultTransport, policy.NewRetryPolicy(), nil, zap.NewNop())
	}
	rt.SetSleepForTest(func(d time.Duration) { sleeps = append(sleeps, d) })
	return rt, &sleeps
}

func TestRetryTransport_RetriesRetryableStatusWithBackoff(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rt, sleeps := newRetryTransport(nil)

	resp := get(t, rt, server.URL+"/api/interactions")
	body(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
}

func TestRetryTransport_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	rt, _ := newRetryTransport(nil)

	resp := get(t, rt, server.URL+"/api/interactions")
	body(t, resp)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestRetryTransport_NonRetryableStatusNotRetried(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	rt, _ := newRetryTransport(nil)

	resp := get(t, rt, server.URL+"/api/interactions")
	body(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestRetryTransport_NonAllowListedPathNotRetried(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	rt, _ := newRetryTransport(nil)

	resp := get(t, rt, server.URL+"/api/preferences")
	body(t, resp)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

type failingRoundTripper struct{}

func (failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestRetryTransport_TransportErrorTaggedAsNetworkError(t *testing.T) {
	rt := NewRetryTransport(failingRoundTripper{}, policy.NewRetryPolicy(), nil, zap.NewNop())
	rt.SetSleepForTest(func(time.Duration) {})

	req, err := http.NewRequest(http.MethodGet, "http://backend/api/interactions", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)

	var netErr *apierr.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestRetryTransport_401RefreshAndReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer new-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tokens := mock.NewMockTokenSource(ctrl)
	tokens.EXPECT().Refresh(gomock.Any()).Return(&oauth2.Token{AccessToken: "new-token"}, nil).Times(1)

	rt, _ := newRetryTransport(tokens)

	resp := get(t, rt, server.URL+"/api/interactions", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer stale-token")
	})
	body(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestRetryTransport_401RefreshFailurePropagates401(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := mock.NewMockTokenSource(ctrl)
	tokens.EXPECT().Refresh(gomock.Any()).Return(nil, errors.New("invalid_grant")).Times(1)

	rt, _ := newRetryTransport(tokens)

	resp := get(t, rt, server.URL+"/api/interactions")
	body(t, resp)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestRetryTransport_SecondConsecutive401NotRefreshedAgain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := mock.NewMockTokenSource(ctrl)
	tokens.EXPECT().Refresh(gomock.Any()).Return(&oauth2.Token{AccessToken: "new-token"}, nil).Times(1)

	rt, _ := newRetryTransport(tokens)

	resp := get(t, rt, server.URL+"/api/interactions")
	body(t, resp)

	// One original call plus one replay, then the 401 is surfaced.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestRetryTransport_BodyReplayedOnRetry(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, `{"title":"Weekly sync"}`, string(data))

		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rt, _ := newRetryTransport(nil)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/interactions", strings.NewReader(`{"title":"Weekly sync"}`))
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	body(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}
