package sessions

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jrsteele09/billing-admin/auth"
	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/token"
	"github.com/jrsteele09/billing-admin/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Authenticator performs the remote login call for a Store.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
}

// Store is the single owner of the signed in identity and its credentials.
// Every mutation writes durable storage first and only then memory, so a storage failure leaves memory unchanged.
type Store struct {
	mu       sync.RWMutex
	session  Session
	repo     Repo
	auth     Authenticator
	hydrated bool
}

var _ oauth2.TokenSource = (*Store)(nil)

// NewStore creates an empty store in the loading state. Call Hydrate once at startup.
func NewStore(repo Repo, authenticator Authenticator) *Store {
	return &Store{
		repo:    repo,
		auth:    authenticator,
		session: Session{IsLoading: true},
	}
}

// Hydrate adopts the persisted session. A malformed stored user is discarded rather than returned as an error.
// Only the first call reads storage; later calls are no-ops.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}
	defer func() {
		s.hydrated = true
		s.session.IsLoading = false
	}()

	rawUser, hasUser, err := s.repo.Get(ctx, UserKey)
	if err != nil {
		return errors.Wrapf(err, "[Store Hydrate] read %s", UserKey)
	}
	accessToken, _, err := s.repo.Get(ctx, AccessTokenKey)
	if err != nil {
		return errors.Wrapf(err, "[Store Hydrate] read %s", AccessTokenKey)
	}
	refreshToken, _, err := s.repo.Get(ctx, RefreshTokenKey)
	if err != nil {
		return errors.Wrapf(err, "[Store Hydrate] read %s", RefreshTokenKey)
	}

	if !hasUser || rawUser == "" || accessToken == "" {
		return nil
	}

	s.session.AccessToken = accessToken
	s.session.RefreshToken = refreshToken

	user, err := decodeUser(rawUser)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding stored user record")
		if delErr := s.repo.Delete(ctx, UserKey); delErr != nil {
			log.Err(delErr).Msg("Failed to remove corrupt user record")
		}
		return nil
	}
	s.session.User = user
	return nil
}

// Login authenticates against the remote API and replaces the whole session on success.
// Nothing is changed when the call fails.
func (s *Store) Login(ctx context.Context, email, password string) error {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	rawUser, err := json.Marshal(res.User)
	if err != nil {
		return errors.Wrapf(err, "[Store Login] encode user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SetMany(ctx, map[string]string{
		AccessTokenKey:  res.AccessToken,
		RefreshTokenKey: res.RefreshToken,
		UserKey:         string(rawUser),
	}); err != nil {
		return errors.Wrapf(err, "[Store Login] persist session")
	}

	user := res.User
	s.session.User = &user
	s.session.AccessToken = res.AccessToken
	s.session.RefreshToken = res.RefreshToken
	log.Info().Str("user_id", user.ID).Msg("Signed in")
	return nil
}

// Logout clears the session from memory and durable storage. It never fails; storage errors are logged.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear(ctx)
}

// LogoutIfCurrent clears the session only while accessToken is still the stored access token, or when no
// token is stored. It reports whether the session is now empty. A session created by a newer login survives.
func (s *Store) LogoutIfCurrent(ctx context.Context, accessToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.AccessToken != "" && s.session.AccessToken != accessToken {
		return false
	}
	s.clear(ctx)
	return true
}

func (s *Store) clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, AllKeys...); err != nil {
		log.Err(err).Msg("Logout: failed to clear stored session")
	}
	s.session.User = nil
	s.session.AccessToken = ""
	s.session.RefreshToken = ""
}

// UpdateUser merges update into the current user and persists it. Without a signed in user it does nothing.
func (s *Store) UpdateUser(ctx context.Context, update users.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.User == nil {
		return nil
	}

	merged := s.session.User.Merge(update)
	rawUser, err := json.Marshal(merged)
	if err != nil {
		return errors.Wrapf(err, "[Store UpdateUser] encode user")
	}
	if err := s.repo.SetMany(ctx, map[string]string{UserKey: string(rawUser)}); err != nil {
		return errors.Wrapf(err, "[Store UpdateUser] persist user")
	}
	s.session.User = &merged
	return nil
}

// RotateTokens stores the result of a refresh made with usedRefreshToken. refreshToken may be empty when the
// server did not rotate it. If the session changed while the refresh was in flight (logout or a new login)
// nothing is written and ErrNoCredentials is returned.
func (s *Store) RotateTokens(ctx context.Context, usedRefreshToken, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.RefreshToken == "" || s.session.RefreshToken != usedRefreshToken {
		return errors.ErrNoCredentials
	}

	values := map[string]string{AccessTokenKey: accessToken}
	if refreshToken != "" {
		values[RefreshTokenKey] = refreshToken
	}
	if err := s.repo.SetMany(ctx, values); err != nil {
		return errors.Wrapf(err, "[Store RotateTokens] persist tokens")
	}

	s.session.AccessToken = accessToken
	if refreshToken != "" {
		s.session.RefreshToken = refreshToken
	}
	return nil
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.session
	if s.session.User != nil {
		user := *s.session.User
		snap.User = &user
	}
	return snap
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

// IsAuthenticated reports whether a user and an access token are both present
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated()
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsLoading
}

// Token implements oauth2.TokenSource over the current access token.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session.AccessToken == "" {
		return nil, errors.ErrNoCredentials
	}
	return &oauth2.Token{
		AccessToken:  s.session.AccessToken,
		RefreshToken: s.session.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       token.ExpiryOf(s.session.AccessToken),
	}, nil
}

func decodeUser(raw string) (*users.User, error) {
	var user users.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "%v", err)
	}
	if user.ID == "" && user.Email == "" {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "user record has no identity")
	}
	return &user, nil
}
