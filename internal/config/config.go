package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

// APIConfig describes how the remote billing API is reached.
type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
}

// SessionConfig selects where the session credentials are persisted.
type SessionConfig interface {
	GetSessionStore() string
	GetSessionFile() string
	GetSessionPassphrase() string
	GetRedisAddr() string
	GetRedisPrefix() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	Cors
}

// New loads a .env file when one exists and returns the environment backed configuration.
func New() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}
	return mainConfig{}
}
