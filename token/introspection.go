package token

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a JWT")

// Expiry decodes the exp claim of rawToken without verifying its signature. The console never holds the
// signing key, so the result is a hint for display and scheduling only. It is the zero time when the token
// has no exp claim.
func Expiry(rawToken string) (time.Time, error) {
	if strings.Count(rawToken, ".") != 2 {
		return time.Time{}, ErrNotJWT
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, errors.Join(ErrNotJWT, err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// ExpiryOf is Expiry with errors folded into the zero time
func ExpiryOf(rawToken string) time.Time {
	exp, err := Expiry(rawToken)
	if err != nil {
		return time.Time{}
	}
	return exp
}
