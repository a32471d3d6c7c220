package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/billing-admin/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("BILLING_API_URL", "")
	t.Setenv("REFRESH_TIMEOUT", "")

	c := config.New()
	require.Equal(t, "127.0.0.1:8080", c.GetPort())
	require.Equal(t, "http://localhost:3000", c.GetAPIBaseURL())
	require.Equal(t, 10*time.Second, c.GetRefreshTimeout())
	require.Equal(t, config.SessionStoreFile, c.GetSessionStore())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("BILLING_API_URL", "https://billing.example.com/")
	t.Setenv("REFRESH_TIMEOUT", "250ms")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "https://billing.example.com", c.GetAPIBaseURL())
	require.Equal(t, 250*time.Millisecond, c.GetRefreshTimeout())
	require.Equal(t, 15*time.Second, c.GetRequestTimeout())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("https://c.example.com"))
}

func TestGetPort(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9090")
	require.Equal(t, "0.0.0.0:9090", config.EnvVars{}.GetPort())

	t.Setenv("HOST", "")
	require.Equal(t, "127.0.0.1:9090", config.EnvVars{}.GetPort())
}
