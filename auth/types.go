package auth

import "github.com/jrsteele09/billing-admin/users"

// Remote auth endpoints
const (
	LoginPath   = "/api/auth/login"
	RefreshPath = "/api/auth/refresh"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	User         users.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// RefreshRequest is the body of POST /api/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is the data of a successful refresh. RefreshToken is empty when the server does not rotate it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}
