package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/billing-admin/guard"
)

// RequireSession admits only requests made while a user is signed in.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return s.guarded(guard.Authenticated, next)
}

// PublicOnly admits only requests made while nobody is signed in, such as the login form.
func (s *Server) PublicOnly(next http.HandlerFunc) http.HandlerFunc {
	return s.guarded(guard.PublicOnly, next)
}

func (s *Server) guarded(policy func(guard.State) guard.Decision, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := policy(guard.FromSession(s.store.Snapshot()))
		if decision == guard.Allow {
			next(w, r)
			return
		}
		writeDecision(w, r, decision)
	}
}

// writeDecision renders a non-Allow guard decision
func writeDecision(w http.ResponseWriter, r *http.Request, decision guard.Decision) {
	switch decision {
	case guard.Loading:
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	case guard.RedirectLogin:
		if wantsHTML(r) {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": RouteLogin})
	case guard.RedirectHome:
		http.Redirect(w, r, RouteHome, http.StatusSeeOther)
	default:
		writeJSONError(w, "internal_error", "unknown guard decision "+decision.String(), http.StatusInternalServerError)
	}
}

// wantsHTML is true for plain browser navigation, which gets real redirects instead of JSON.
func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
