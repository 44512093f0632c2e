// Package auth supplies the bearer credential for outgoing requests: an
// OAuth2 refresh client for the identity provider and a caching token
// source the transports consult.
package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/bsalter/interactions-client/internal/interfaces"
)

// Ensure OAuth2Client implements interfaces.AuthClient
var _ interfaces.AuthClient = (*OAuth2Client)(nil)

// OAuth2Client refreshes tokens against the identity provider's token
// endpoint.
type OAuth2Client struct {
	conf   *oauth2.Config
	logger *zap.Logger
}

// NewOAuth2Client builds a refresh client for the given provider domain,
// e.g. "tenant.auth0.com".
func NewOAuth2Client(domain, clientID string, logger *zap.Logger) *OAuth2Client {
	return &OAuth2Client{
		conf: &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				TokenURL: fmt.Sprintf("https://%s/oauth/token", domain),
			},
		},
		logger: logger,
	}
}

// RefreshToken exchanges a refresh token for a fresh access token.
func (c *OAuth2Client) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is empty")
	}

	src := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	c.logger.Debug("Refreshed access token", zap.Time("expiry", token.Expiry))
	return token, nil
}
