package filerepo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/billing-admin/auth"
	"github.com/jrsteele09/billing-admin/sessions"
	"github.com/jrsteele09/billing-admin/sessions/filerepo"
	"github.com/jrsteele09/billing-admin/users"
	"github.com/stretchr/testify/require"
)

func sessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "nested", "session.json")
}

func TestRepo_Plaintext(t *testing.T) {
	path := sessionPath(t)
	ctx := context.Background()

	repo := filerepo.New(path, "")
	_, ok, err := repo.Get(ctx, sessions.UserKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.SetMany(ctx, map[string]string{
		sessions.AccessTokenKey:  "A1",
		sessions.RefreshTokenKey: "R1",
		sessions.UserKey:         `{"id":"u-1"}`,
	}))

	reopened := filerepo.New(path, "")
	v, ok, err := reopened.Get(ctx, sessions.RefreshTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "R1", v)

	require.NoError(t, reopened.Delete(ctx, sessions.AllKeys...))
	_, ok, err = filerepo.New(path, "").Get(ctx, sessions.AccessTokenKey)
	require.NoError(t, err)
	require.False(t, ok)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRepo_Encrypted(t *testing.T) {
	path := sessionPath(t)
	ctx := context.Background()

	repo := filerepo.New(path, "correct horse")
	require.NoError(t, repo.SetMany(ctx, map[string]string{sessions.AccessTokenKey: "secret-access-token"}))
	require.NoError(t, repo.SetMany(ctx, map[string]string{sessions.RefreshTokenKey: "R1"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-access-token")

	t.Run("same passphrase", func(t *testing.T) {
		v, ok, err := filerepo.New(path, "correct horse").Get(ctx, sessions.AccessTokenKey)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "secret-access-token", v)
	})

	t.Run("wrong passphrase reads as empty", func(t *testing.T) {
		_, ok, err := filerepo.New(path, "battery staple").Get(ctx, sessions.AccessTokenKey)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("no passphrase reads as empty", func(t *testing.T) {
		_, ok, err := filerepo.New(path, "").Get(ctx, sessions.AccessTokenKey)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("new passphrase replaces the file", func(t *testing.T) {
		repo := filerepo.New(path, "battery staple")
		require.NoError(t, repo.SetMany(ctx, map[string]string{sessions.AccessTokenKey: "A2"}))

		v, ok, err := filerepo.New(path, "battery staple").Get(ctx, sessions.AccessTokenKey)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "A2", v)

		_, ok, err = filerepo.New(path, "correct horse").Get(ctx, sessions.RefreshTokenKey)
		require.NoError(t, err)
		require.False(t, ok)
	})
}

type authenticatorFunc func(ctx context.Context, email, password string) (*auth.LoginResult, error)

func (f authenticatorFunc) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	return f(ctx, email, password)
}

func TestRepo_CorruptFileIsDiscarded(t *testing.T) {
	for name, passphrase := range map[string]string{"plaintext": "", "encrypted": "correct horse"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))

			login := authenticatorFunc(func(ctx context.Context, email, password string) (*auth.LoginResult, error) {
				return &auth.LoginResult{
					User:         users.User{ID: "u-1", Email: email},
					AccessToken:  "A1",
					RefreshToken: "R1",
				}, nil
			})

			store := sessions.NewStore(filerepo.New(path, passphrase), login)
			require.NoError(t, store.Hydrate(ctx))
			require.False(t, store.IsAuthenticated())

			store.Logout(ctx)
			require.NoError(t, store.Login(ctx, "admin@example.com", "password123"))
			require.True(t, store.IsAuthenticated())

			restarted := sessions.NewStore(filerepo.New(path, passphrase), login)
			require.NoError(t, restarted.Hydrate(ctx))
			require.True(t, restarted.IsAuthenticated())
			require.Equal(t, "A1", restarted.AccessToken())
		})
	}
}

func TestRepo_DeleteMissingKeys(t *testing.T) {
	path := sessionPath(t)
	repo := filerepo.New(path, "")
	require.NoError(t, repo.Delete(context.Background(), sessions.AllKeys...))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "nothing to delete means nothing is written")
}
