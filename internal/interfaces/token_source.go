package interfaces

import (
	"context"

	"golang.org/x/oauth2"
)

//go:generate mockgen -source=token_source.go -destination=mock/token_source.go -package=mock

// TokenSource supplies the bearer credential attached to outgoing requests.
// Token returns the current token without network I/O unless the token is
// missing or expired; Refresh always performs a refresh round-trip.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	Refresh(ctx context.Context) (*oauth2.Token, error)
}

// AuthClient performs the actual token refresh against the identity
// provider.
type AuthClient interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}
