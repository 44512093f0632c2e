package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/bsalter/interactions-client/internal/apierr"
	"github.com/bsalter/interactions-client/internal/cache"
	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/metrics"
	"github.com/bsalter/interactions-client/internal/models"
	"github.com/bsalter/interactions-client/internal/policy"
)

// Ensure CachingTokenSource implements interfaces.TokenSource
var _ interfaces.TokenSource = (*CachingTokenSource)(nil)

// expiryLeeway is subtracted from the token expiry so a token about to
// expire mid-request is refreshed proactively.
const expiryLeeway = 30 * time.Second

// CachingTokenSource holds the current token, refreshing it through the
// auth client when expired and mirroring it into the cache under the auth
// key namespace so a restarted session can resume without a fresh login.
type CachingTokenSource struct {
	mu      sync.Mutex
	client  interfaces.AuthClient
	cache   interfaces.Cache
	logger  *zap.Logger
	userID  string
	authTTL time.Duration
	current *oauth2.Token
}

// NewCachingTokenSource creates a token source for userID. cache may be nil.
func NewCachingTokenSource(client interfaces.AuthClient, store interfaces.Cache, userID string, logger *zap.Logger) *CachingTokenSource {
	return &CachingTokenSource{
		client:  client,
		cache:   store,
		logger:  logger,
		userID:  userID,
		authTTL: policy.DefaultTTLs[models.CategoryAuth],
	}
}

// SetToken seeds the source with a token obtained from an interactive
// login.
func (s *CachingTokenSource) SetToken(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = token
	s.storeLocked()
}

// Token returns the current token, restoring it from cache or refreshing as
// needed. Returns apierr.ErrNoToken when no credential can be produced.
func (s *CachingTokenSource) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.validLocked() {
		return s.current, nil
	}

	if s.current == nil {
		s.restoreLocked()
		if s.current != nil && s.validLocked() {
			return s.current, nil
		}
	}

	if s.current == nil || s.current.RefreshToken == "" {
		return nil, apierr.ErrNoToken
	}

	return s.refreshLocked(ctx)
}

// Refresh forces a refresh round-trip regardless of the current token's
// validity.
func (s *CachingTokenSource) Refresh(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.RefreshToken == "" {
		return nil, apierr.ErrNoToken
	}
	return s.refreshLocked(ctx)
}

func (s *CachingTokenSource) refreshLocked(ctx context.Context) (*oauth2.Token, error) {
	token, err := s.client.RefreshToken(ctx, s.current.RefreshToken)
	if err != nil {
		metrics.RecordTokenRefresh("failure")
		return nil, err
	}
	metrics.RecordTokenRefresh("success")

	// Providers may rotate refresh tokens; keep the old one when they don't.
	if token.RefreshToken == "" {
		token.RefreshToken = s.current.RefreshToken
	}
	s.current = token
	s.storeLocked()
	return token, nil
}

// validLocked reports whether the current token is still usable, preferring
// the exp claim embedded in the access token over the transport-level
// expiry.
func (s *CachingTokenSource) validLocked() bool {
	if s.current.AccessToken == "" {
		return false
	}
	expiry := expiresAt(s.current)
	if expiry.IsZero() {
		return true
	}
	return time.Now().Add(expiryLeeway).Before(expiry)
}

func (s *CachingTokenSource) storeLocked() {
	if s.cache == nil || s.current == nil {
		return
	}
	data, err := json.Marshal(s.current)
	if err != nil {
		s.logger.Warn("Failed to marshal token for cache", zap.Error(err))
		return
	}
	s.cache.Set(cache.AuthTokenKey(s.userID), data, s.authTTL)
}

func (s *CachingTokenSource) restoreLocked() {
	if s.cache == nil {
		return
	}
	data, found := s.cache.Get(cache.AuthTokenKey(s.userID))
	if !found {
		return
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		s.logger.Warn("Failed to unmarshal cached token", zap.Error(err))
		s.cache.Delete(cache.AuthTokenKey(s.userID))
		return
	}
	s.current = &token
}

// expiresAt resolves a token's expiry: the JWT exp claim when the access
// token parses as a JWT, otherwise the OAuth2 expiry field.
func expiresAt(token *oauth2.Token) time.Time {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token.AccessToken, &claims); err == nil {
		if claims.ExpiresAt != nil {
			return claims.ExpiresAt.Time
		}
	}
	return token.Expiry
}
