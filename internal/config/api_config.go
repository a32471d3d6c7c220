package config

import (
	"strings"
	"time"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the remote billing API root without a trailing slash (e.g. "https://billing.example.com")
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:3000"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetDuration("REQUEST_TIMEOUT", 15*time.Second)
}

// GetRefreshTimeout bounds a single token refresh call.
func (API) GetRefreshTimeout() time.Duration {
	return GetDuration("REFRESH_TIMEOUT", 10*time.Second)
}
