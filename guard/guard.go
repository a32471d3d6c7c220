package guard

import "github.com/jrsteele09/billing-admin/sessions"

// Decision is the outcome of a route guard
type Decision int

const (
	Allow         Decision = iota // Render the route
	Loading                       // Hydration still running, render a neutral placeholder
	RedirectLogin                 // Send the user to the login entry point
	RedirectHome                  // Send the user away from a public-only route
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

// State is the part of the session the guards look at.
type State struct {
	IsLoading      bool
	HasUser        bool
	HasAccessToken bool
}

// FromSession extracts guard state from a session snapshot
func FromSession(s sessions.Session) State {
	return State{
		IsLoading:      s.IsLoading,
		HasUser:        s.User != nil,
		HasAccessToken: s.AccessToken != "",
	}
}

func (s State) signedIn() bool {
	return s.HasUser && s.HasAccessToken
}

// Authenticated admits only signed in users. While hydration runs no decision is made.
func Authenticated(s State) Decision {
	switch {
	case s.IsLoading:
		return Loading
	case !s.signedIn():
		return RedirectLogin
	}
	return Allow
}

// PublicOnly admits only visitors without a session, such as the login page.
func PublicOnly(s State) Decision {
	switch {
	case s.IsLoading:
		return Loading
	case s.signedIn():
		return RedirectHome
	}
	return Allow
}
