// Package client is the API facade: the single call-site the rest of the
// application uses to reach the backend. It owns URL construction, site
// scoping, credential attachment, and cache invalidation; response caching
// and retry live in the transport chain underneath.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/apierr"
	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/metrics"
	"github.com/bsalter/interactions-client/internal/transport"
)

// Client is the API facade. Construct it once and share it; all state is
// injected, never ambient.
type Client struct {
	http     *http.Client
	baseURL  string
	store    interfaces.Cache
	tokens   interfaces.TokenSource
	sites    *SiteContext
	errors   *apierr.Classifier
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a facade over the given HTTP client, whose transport is
// expected to carry the caching and retry layers.
func New(baseURL string, httpClient *http.Client, store interfaces.Cache, tokens interfaces.TokenSource, sites *SiteContext, classifier *apierr.Classifier, logger *zap.Logger) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		store:    store,
		tokens:   tokens,
		sites:    sites,
		errors:   classifier,
		validate: validator.New(),
		logger:   logger,
	}
}

// Interactions returns the typed interaction operations.
func (c *Client) Interactions() *InteractionsService {
	return &InteractionsService{client: c}
}

// Sites returns the typed site operations.
func (c *Client) Sites() *SitesService {
	return &SitesService{client: c}
}

// SiteContext returns the active-site state shared with the services.
func (c *Client) SiteContext() *SiteContext {
	return c.sites
}

type requestOptions struct {
	noCache        bool
	cacheTTL       time.Duration
	suppressNotify bool
	skipSiteID     bool
	headers        http.Header
}

// RequestOption customizes a single call.
type RequestOption func(*requestOptions)

// WithoutCache bypasses the response cache for this call.
func WithoutCache() RequestOption {
	return func(o *requestOptions) { o.noCache = true }
}

// WithCacheTTL overrides the category TTL for this call.
func WithCacheTTL(ttl time.Duration) RequestOption {
	return func(o *requestOptions) { o.cacheTTL = ttl }
}

// WithoutNotify suppresses the user-facing notification on failure.
func WithoutNotify() RequestOption {
	return func(o *requestOptions) { o.suppressNotify = true }
}

// WithoutSiteScope skips the automatic site_id injection.
func WithoutSiteScope() RequestOption {
	return func(o *requestOptions) { o.skipSiteID = true }
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// Get performs a GET and returns the raw response body.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, opts ...RequestOption) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, opts...)
}

// GetJSON performs a GET and unmarshals the response into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, out interface{}, opts ...RequestOption) error {
	data, err := c.Get(ctx, endpoint, params, opts...)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Post performs a POST with a JSON body, unmarshaling into out when non-nil.
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}, out interface{}, opts ...RequestOption) error {
	data, err := c.do(ctx, http.MethodPost, endpoint, nil, body, opts...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Put performs a PUT with a JSON body, unmarshaling into out when non-nil.
func (c *Client) Put(ctx context.Context, endpoint string, body interface{}, out interface{}, opts ...RequestOption) error {
	data, err := c.do(ctx, http.MethodPut, endpoint, nil, body, opts...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) error {
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil, opts...)
	return err
}

// InvalidateCache evicts a single key, or every key under a prefix, so
// mutating operations can synchronously drop now-stale reads.
func (c *Client) InvalidateCache(keyOrPrefix string, isPrefix bool) {
	if isPrefix {
		removed := c.store.ClearPrefix(keyOrPrefix)
		c.logger.Debug("Invalidated cache prefix",
			zap.String("prefix", keyOrPrefix),
			zap.Int("removed", removed))
		return
	}
	c.store.Delete(keyOrPrefix)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body interface{}, opts ...RequestOption) ([]byte, error) {
	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	u, err := c.buildURL(endpoint, params, options.skipSiteID)
	if err != nil {
		return nil, c.fail(ctx, err, options)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, c.fail(ctx, fmt.Errorf("failed to encode request body: %w", err), options)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, c.fail(ctx, err, options)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range options.headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
	if options.noCache {
		req.Header.Set("Cache-Control", "no-cache")
	}
	if options.cacheTTL > 0 {
		req.Header.Set(transport.HeaderCacheTTL, options.cacheTTL.String())
	}

	if token, err := c.tokens.Token(ctx); err == nil {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	} else if !errors.Is(err, apierr.ErrNoToken) {
		// A failed proactive refresh is not fatal here: the request goes
		// out unauthenticated and the 401 path takes over if needed.
		c.logger.Warn("Proceeding without credential", zap.Error(err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(ctx, err, options)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, &apierr.NetworkError{Err: err}, options)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(ctx, apierr.FromResponse(resp.StatusCode, data), options)
	}

	return data, nil
}

// buildURL joins the base URL and endpoint with exactly one slash, merges
// query parameters, and injects the active site scope unless already
// present.
func (c *Client) buildURL(endpoint string, params url.Values, skipSiteID bool) (*url.URL, error) {
	endpoint = strings.TrimPrefix(endpoint, "/")

	u, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	q := u.Query()
	for key, values := range params {
		q[key] = values
	}

	if !skipSiteID && q.Get("site_id") == "" {
		if siteID, ok := c.sites.ActiveSiteID(); ok {
			q.Set("site_id", strconv.Itoa(siteID))
		}
	}

	u.RawQuery = q.Encode()
	return u, nil
}

// fail routes an error through the classifier before re-raising it, so
// callers always receive an already-classified error.
func (c *Client) fail(ctx context.Context, err error, options requestOptions) error {
	c.errors.Handle(ctx, err, options.suppressNotify)
	return err
}
