package config

const (
	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionStore() string {
	return GetEnv("SESSION_STORE", SessionStoreFile)
}

func (Session) GetSessionFile() string {
	return GetEnv("SESSION_FILE", "./data/session.json")
}

// GetSessionPassphrase returns the passphrase used to encrypt the session file. Empty means plaintext.
func (Session) GetSessionPassphrase() string {
	return GetEnv("SESSION_PASSPHRASE", "")
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "billing-admin:")
}
