package refresh

import (
	"context"
	"time"

	"github.com/jrsteele09/billing-admin/internal/config"
	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/internal/obs"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const flightKey = "refresh"

// Manager renews the access token. Concurrent callers that all saw the same stale token share one network call.
type Manager struct {
	endpoint Endpoint
	store    CredentialStore
	timeout  time.Duration
	group    singleflight.Group
}

// NewManager creates a new refresh manager bounded by the configured refresh timeout
func NewManager(endpoint Endpoint, store CredentialStore, cfg config.APIConfig) *Manager {
	return &Manager{
		endpoint: endpoint,
		store:    store,
		timeout:  cfg.GetRefreshTimeout(),
	}
}

// Refresh makes sure the store holds an access token newer than staleAccessToken and reports whether it does.
// The refresh token is only replaced when the server returns a new one. On any failure the stored credentials
// are left as they were. Cancelling ctx does not abort a refresh that other callers may be waiting on.
func (m *Manager) Refresh(ctx context.Context, staleAccessToken string) bool {
	_, err, _ := m.group.Do(flightKey, func() (interface{}, error) {
		return nil, m.refresh(context.WithoutCancel(ctx), staleAccessToken)
	})
	return err == nil
}

func (m *Manager) refresh(ctx context.Context, staleAccessToken string) error {
	// Another caller already replaced the token this request was sent with.
	if current := m.store.AccessToken(); current != "" && current != staleAccessToken {
		obs.RecordRefresh(obs.RefreshShared)
		return nil
	}

	refreshToken := m.store.RefreshToken()
	if refreshToken == "" {
		obs.RecordRefresh(obs.RefreshNoToken)
		return errors.ErrNoCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	pair, err := m.endpoint.Refresh(ctx, refreshToken)
	if err != nil {
		log.Err(err).Msg("Token refresh failed")
		obs.RecordRefresh(obs.RefreshFailed)
		return err
	}

	if err := m.store.RotateTokens(ctx, refreshToken, pair.AccessToken, pair.RefreshToken); err != nil {
		log.Err(err).Msg("Token refresh: could not store new tokens")
		obs.RecordRefresh(obs.RefreshFailed)
		return err
	}

	log.Debug().Bool("rotated", pair.RefreshToken != "").Msg("Access token refreshed")
	obs.RecordRefresh(obs.RefreshSucceeded)
	return nil
}
