package guard_test

import (
	"testing"

	"github.com/jrsteele09/billing-admin/guard"
	"github.com/jrsteele09/billing-admin/sessions"
	"github.com/jrsteele09/billing-admin/users"
	"github.com/stretchr/testify/require"
)

func TestGuards(t *testing.T) {
	tests := []struct {
		name          string
		state         guard.State
		authenticated guard.Decision
		publicOnly    guard.Decision
	}{
		{
			name:          "loading wins even with a session",
			state:         guard.State{IsLoading: true, HasUser: true, HasAccessToken: true},
			authenticated: guard.Loading,
			publicOnly:    guard.Loading,
		},
		{
			name:          "loading without a session",
			state:         guard.State{IsLoading: true},
			authenticated: guard.Loading,
			publicOnly:    guard.Loading,
		},
		{
			name:          "signed in",
			state:         guard.State{HasUser: true, HasAccessToken: true},
			authenticated: guard.Allow,
			publicOnly:    guard.RedirectHome,
		},
		{
			name:          "anonymous",
			state:         guard.State{},
			authenticated: guard.RedirectLogin,
			publicOnly:    guard.Allow,
		},
		{
			name:          "user without token",
			state:         guard.State{HasUser: true},
			authenticated: guard.RedirectLogin,
			publicOnly:    guard.Allow,
		},
		{
			name:          "token without user",
			state:         guard.State{HasAccessToken: true},
			authenticated: guard.RedirectLogin,
			publicOnly:    guard.Allow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.authenticated, guard.Authenticated(tt.state))
			require.Equal(t, tt.publicOnly, guard.PublicOnly(tt.state))
		})
	}
}

func TestFromSession(t *testing.T) {
	state := guard.FromSession(sessions.Session{User: &users.User{ID: "u-1"}, AccessToken: "A1"})
	require.Equal(t, guard.State{HasUser: true, HasAccessToken: true}, state)
	require.Equal(t, "allow", guard.Authenticated(state).String())
}
