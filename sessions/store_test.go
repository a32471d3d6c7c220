package sessions_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jrsteele09/billing-admin/auth"
	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/internal/utils"
	"github.com/jrsteele09/billing-admin/sessions"
	fakesessionrepo "github.com/jrsteele09/billing-admin/sessions/repofakes"
	"github.com/jrsteele09/billing-admin/users"
	"github.com/stretchr/testify/require"
)

var errDiskFull = fmt.Errorf("disk full")

type fakeAuthenticator struct {
	result *auth.LoginResult
	err    error
	calls  int
}

func (f *fakeAuthenticator) Login(_ context.Context, email, password string) (*auth.LoginResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testUser() users.User {
	return users.User{ID: "u-1", Email: "admin@example.com", Type: users.RoleAdmin, Name: "Admin"}
}

func newLoggedInStore(t *testing.T) (*sessions.Store, *fakesessionrepo.FakeSessionRepo) {
	t.Helper()

	repo := fakesessionrepo.NewFakeSessionRepo()
	store := sessions.NewStore(repo, &fakeAuthenticator{
		result: &auth.LoginResult{User: testUser(), AccessToken: "A1", RefreshToken: "R1"},
	})
	require.NoError(t, store.Hydrate(context.Background()))
	require.NoError(t, store.Login(context.Background(), "admin@example.com", "password123"))
	return store, repo
}

func storedUser(t *testing.T, repo sessions.Repo) (users.User, bool) {
	t.Helper()

	raw, ok, err := repo.Get(context.Background(), sessions.UserKey)
	require.NoError(t, err)
	if !ok {
		return users.User{}, false
	}
	var u users.User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	return u, true
}

func TestStore_Login(t *testing.T) {
	store, repo := newLoggedInStore(t)

	snap := store.Snapshot()
	require.True(t, snap.IsAuthenticated())
	require.False(t, snap.IsLoading)
	require.Equal(t, "A1", snap.AccessToken)
	require.Equal(t, "R1", snap.RefreshToken)
	require.Equal(t, testUser(), *snap.User)

	access, _, _ := repo.Get(context.Background(), sessions.AccessTokenKey)
	refresh, _, _ := repo.Get(context.Background(), sessions.RefreshTokenKey)
	require.Equal(t, "A1", access)
	require.Equal(t, "R1", refresh)
	u, ok := storedUser(t, repo)
	require.True(t, ok)
	require.Equal(t, testUser(), u)
}

func TestStore_LoginFailureLeavesSessionUntouched(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	authenticator := &fakeAuthenticator{err: &errors.AuthenticationError{StatusCode: 401, Message: "Invalid email or password"}}
	store := sessions.NewStore(repo, authenticator)
	require.NoError(t, store.Hydrate(context.Background()))

	err := store.Login(context.Background(), "admin@example.com", "wrong")
	require.True(t, errors.Is(err, errors.ErrAuthentication))
	require.False(t, store.Snapshot().IsAuthenticated())
	require.Equal(t, 0, repo.Len())
}

func TestStore_LoginStorageFailure(t *testing.T) {
	store, repo := newLoggedInStore(t)
	before := store.Snapshot()

	repo.FailWrites(errDiskFull)
	err := store.Login(context.Background(), "other@example.com", "password123")
	require.ErrorIs(t, err, errDiskFull)
	require.Equal(t, before, store.Snapshot())
}

func TestStore_RestartHydration(t *testing.T) {
	_, repo := newLoggedInStore(t)

	restarted := sessions.NewStore(repo, &fakeAuthenticator{})
	require.True(t, restarted.Snapshot().IsLoading)
	require.NoError(t, restarted.Hydrate(context.Background()))

	snap := restarted.Snapshot()
	require.False(t, snap.IsLoading)
	require.True(t, snap.IsAuthenticated())
	require.Equal(t, "A1", snap.AccessToken)
	require.Equal(t, "R1", snap.RefreshToken)
	require.Equal(t, testUser(), *snap.User)
}

func TestStore_Hydrate(t *testing.T) {
	t.Run("empty storage", func(t *testing.T) {
		store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo(), &fakeAuthenticator{})
		require.NoError(t, store.Hydrate(context.Background()))
		snap := store.Snapshot()
		require.False(t, snap.IsLoading)
		require.Nil(t, snap.User)
		require.Empty(t, snap.AccessToken)
	})

	t.Run("token without user is ignored", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeSessionRepo()
		repo.Seed(map[string]string{sessions.AccessTokenKey: "A1", sessions.RefreshTokenKey: "R1"})
		store := sessions.NewStore(repo, &fakeAuthenticator{})
		require.NoError(t, store.Hydrate(context.Background()))
		require.Empty(t, store.AccessToken())
		require.False(t, store.Snapshot().IsAuthenticated())
	})

	t.Run("corrupt user record", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeSessionRepo()
		repo.Seed(map[string]string{
			sessions.AccessTokenKey:  "A1",
			sessions.RefreshTokenKey: "R1",
			sessions.UserKey:         "{not json",
		})
		store := sessions.NewStore(repo, &fakeAuthenticator{})
		require.NoError(t, store.Hydrate(context.Background()))

		snap := store.Snapshot()
		require.False(t, snap.IsLoading)
		require.Nil(t, snap.User)
		require.Equal(t, "A1", snap.AccessToken)
		require.False(t, snap.IsAuthenticated())

		_, ok := storedUser(t, repo)
		require.False(t, ok, "corrupt record should be removed")
	})

	t.Run("only the first call reads storage", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeSessionRepo()
		store := sessions.NewStore(repo, &fakeAuthenticator{})
		require.NoError(t, store.Hydrate(context.Background()))

		raw, _ := json.Marshal(testUser())
		repo.Seed(map[string]string{sessions.AccessTokenKey: "A1", sessions.UserKey: string(raw)})
		require.NoError(t, store.Hydrate(context.Background()))
		require.Nil(t, store.Snapshot().User)
	})
}

func TestStore_Logout(t *testing.T) {
	store, repo := newLoggedInStore(t)

	store.Logout(context.Background())
	snap := store.Snapshot()
	require.Nil(t, snap.User)
	require.Empty(t, snap.AccessToken)
	require.Empty(t, snap.RefreshToken)
	require.Equal(t, 0, repo.Len())

	// idempotent
	store.Logout(context.Background())
	require.Equal(t, snap, store.Snapshot())

	t.Run("storage failure still clears memory", func(t *testing.T) {
		store, repo := newLoggedInStore(t)
		repo.FailWrites(errDiskFull)
		store.Logout(context.Background())
		require.False(t, store.Snapshot().IsAuthenticated())
		require.Empty(t, store.RefreshToken())
	})
}

func TestStore_LogoutIfCurrent(t *testing.T) {
	t.Run("matching token clears", func(t *testing.T) {
		store, repo := newLoggedInStore(t)
		require.True(t, store.LogoutIfCurrent(context.Background(), "A1"))
		require.False(t, store.IsAuthenticated())
		require.Equal(t, 0, repo.Len())
	})

	t.Run("newer session is kept", func(t *testing.T) {
		store, repo := newLoggedInStore(t)
		require.False(t, store.LogoutIfCurrent(context.Background(), "A0"))
		require.True(t, store.IsAuthenticated())
		require.Equal(t, "A1", store.AccessToken())
		require.Equal(t, 3, repo.Len())
	})

	t.Run("already signed out", func(t *testing.T) {
		store, _ := newLoggedInStore(t)
		store.Logout(context.Background())
		require.True(t, store.LogoutIfCurrent(context.Background(), "A1"))
	})
}

func TestStore_UpdateUser(t *testing.T) {
	t.Run("merges and persists", func(t *testing.T) {
		store, repo := newLoggedInStore(t)
		require.NoError(t, store.UpdateUser(context.Background(), users.UserUpdate{
			Name:   utils.Ptr("Joe"),
			Status: utils.Ptr(users.StatusOnline),
		}))

		want := testUser()
		want.Name = "Joe"
		want.Status = users.StatusOnline
		require.Equal(t, want, *store.Snapshot().User)

		u, ok := storedUser(t, repo)
		require.True(t, ok)
		require.Equal(t, want, u)
		require.Equal(t, "A1", store.AccessToken())
	})

	t.Run("no user is a no-op", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeSessionRepo()
		store := sessions.NewStore(repo, &fakeAuthenticator{})
		require.NoError(t, store.Hydrate(context.Background()))
		require.NoError(t, store.UpdateUser(context.Background(), users.UserUpdate{Name: utils.Ptr("Joe")}))
		require.Nil(t, store.Snapshot().User)
		require.Equal(t, 0, repo.Len())
	})

	t.Run("storage failure leaves memory unchanged", func(t *testing.T) {
		store, repo := newLoggedInStore(t)
		repo.FailWrites(errDiskFull)
		err := store.UpdateUser(context.Background(), users.UserUpdate{Name: utils.Ptr("Joe")})
		require.ErrorIs(t, err, errDiskFull)
		require.Equal(t, "Admin", store.Snapshot().User.Name)
	})
}

func TestStore_RotateTokens(t *testing.T) {
	t.Run("keeps refresh token when not rotated", func(t *testing.T) {
		store, repo := newLoggedInStore(t)
		require.NoError(t, store.RotateTokens(context.Background(), "R1", "A2", ""))
		require.Equal(t, "A2", store.AccessToken())
		require.Equal(t, "R1", store.RefreshToken())
		refresh, _, _ := repo.Get(context.Background(), sessions.RefreshTokenKey)
		require.Equal(t, "R1", refresh)
	})

	t.Run("replaces rotated refresh token", func(t *testing.T) {
		store, _ := newLoggedInStore(t)
		require.NoError(t, store.RotateTokens(context.Background(), "R1", "A2", "R2"))
		require.Equal(t, "R2", store.RefreshToken())
	})

	t.Run("session changed during refresh", func(t *testing.T) {
		store, repo := newLoggedInStore(t)
		store.Logout(context.Background())
		err := store.RotateTokens(context.Background(), "R1", "A2", "")
		require.ErrorIs(t, err, errors.ErrNoCredentials)
		require.Empty(t, store.AccessToken())
		require.Equal(t, 0, repo.Len())
	})
}

func TestStore_Token(t *testing.T) {
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo(), &fakeAuthenticator{})
	_, err := store.Token()
	require.ErrorIs(t, err, errors.ErrNoCredentials)

	store, _ = newLoggedInStore(t)
	tok, err := store.Token()
	require.NoError(t, err)
	require.Equal(t, "A1", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, tok.Expiry.IsZero(), "opaque tokens carry no expiry")
}
