package auth

import "errors"

var (
	MissingAccessTokenErr  = errors.New("response missing access token")
	MissingRefreshTokenErr = errors.New("no refresh token")
)
