package refresh

import (
	"context"

	"github.com/jrsteele09/billing-admin/auth"
)

// Endpoint exchanges a refresh token for a new token pair. *auth.Client satisfies it.
type Endpoint interface {
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

// CredentialStore holds the tokens being refreshed. *sessions.Store satisfies it.
type CredentialStore interface {
	AccessToken() string
	RefreshToken() string
	RotateTokens(ctx context.Context, usedRefreshToken, accessToken, refreshToken string) error
}
