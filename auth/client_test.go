package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/billing-admin/auth"
	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/users"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "password123"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if req.Email != testEmail || req.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u-1","email":"admin@example.com","type":"admin","name":"Admin"},"accessToken":"A1","refreshToken":"R1"}}`))
	})
	mux.HandleFunc("POST "+auth.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		var req auth.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.RefreshToken {
		case "R1":
			_, _ = w.Write([]byte(`{"data":{"accessToken":"A2"}}`))
		case "R-rotate":
			_, _ = w.Write([]byte(`{"data":{"accessToken":"A3","refreshToken":"R2"}}`))
		default:
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("refresh token revoked"))
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Login(t *testing.T) {
	srv := newAuthServer(t)
	client := auth.NewClient(srv.URL+"/", auth.WithHTTPClient(srv.Client()))
	require.Equal(t, srv.URL, client.BaseURL())

	t.Run("success", func(t *testing.T) {
		res, err := client.Login(context.Background(), testEmail, testPassword)
		require.NoError(t, err)
		require.Equal(t, "A1", res.AccessToken)
		require.Equal(t, "R1", res.RefreshToken)
		require.Equal(t, "u-1", res.User.ID)
		require.Equal(t, users.RoleAdmin, res.User.Type)
	})

	t.Run("rejected", func(t *testing.T) {
		_, err := client.Login(context.Background(), testEmail, "wrong")
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrAuthentication))

		var authErr *errors.AuthenticationError
		require.True(t, errors.As(err, &authErr))
		require.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		require.Equal(t, "Invalid email or password", authErr.Message)
	})

	t.Run("invalid email is rejected before sending", func(t *testing.T) {
		_, err := client.Login(context.Background(), "not-an-email", testPassword)
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrInvalidRequest))
		require.Contains(t, err.Error(), "must be a valid email address")
	})

	t.Run("transport failure", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		deadURL := dead.URL
		dead.Close()

		_, err := auth.NewClient(deadURL).Login(context.Background(), testEmail, testPassword)
		require.Error(t, err)
		require.True(t, errors.IsTransport(err))
		require.False(t, errors.Is(err, errors.ErrAuthentication))
	})
}

func TestClient_Refresh(t *testing.T) {
	srv := newAuthServer(t)
	client := auth.NewClient(srv.URL, auth.WithHTTPClient(srv.Client()))

	t.Run("without rotation", func(t *testing.T) {
		pair, err := client.Refresh(context.Background(), "R1")
		require.NoError(t, err)
		require.Equal(t, "A2", pair.AccessToken)
		require.Empty(t, pair.RefreshToken)
	})

	t.Run("with rotation", func(t *testing.T) {
		pair, err := client.Refresh(context.Background(), "R-rotate")
		require.NoError(t, err)
		require.Equal(t, "A3", pair.AccessToken)
		require.Equal(t, "R2", pair.RefreshToken)
	})

	t.Run("rejected", func(t *testing.T) {
		_, err := client.Refresh(context.Background(), "stale")
		var rejection *errors.RemoteRejection
		require.True(t, errors.As(err, &rejection))
		require.Equal(t, http.StatusForbidden, rejection.StatusCode)
		require.Equal(t, "refresh token revoked", rejection.Message)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := client.Refresh(context.Background(), "")
		require.ErrorIs(t, err, auth.MissingRefreshTokenErr)
	})
}
