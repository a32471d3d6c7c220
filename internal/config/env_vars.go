package config

import (
	"net"
	"os"
	"strings"
	"time"
)

const (
	hostEnvVar    = "HOST"
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	apiBaseURLVar = "BILLING_API_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetPort returns the listen address. The console holds the admin's tokens, so it binds to loopback unless HOST
// is set or PORT already carries a host part (":8080" listens on every interface).
func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if strings.Contains(port, ":") {
		return port
	}
	return net.JoinHostPort(GetEnv(hostEnvVar, "127.0.0.1"), port)
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Billing Admin")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration parses envVar as a time.Duration, falling back to defaultValue when unset or malformed.
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
