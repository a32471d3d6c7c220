package sessions

import "github.com/jrsteele09/billing-admin/users"

// Durable storage keys
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserKey         = "user"
)

// AllKeys lists every key the session owns in durable storage
var AllKeys = []string{AccessTokenKey, RefreshTokenKey, UserKey}

// Session is a point-in-time copy of who is signed in and with which credentials.
type Session struct {
	User         *users.User // Set after login or a successful hydration
	AccessToken  string      // Short-lived bearer credential sent on every API call
	RefreshToken string      // Long-lived credential only used to mint a new access token
	IsLoading    bool        // True until the first hydration from durable storage finishes
}

// IsAuthenticated reports whether both an identity and an access token are present
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}
