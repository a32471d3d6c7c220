package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/billing-admin/auth"
	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/users"
	"github.com/rs/zerolog/log"
)

// SessionView is what the browser learns about the session. Tokens stay in the server process.
type SessionView struct {
	IsLoading       bool        `json:"isLoading"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *users.User `json:"user,omitempty"`
	DisplayName     string      `json:"displayName,omitempty"`
	IsAdmin         bool        `json:"isAdmin"`
	ExpiresAt       *time.Time  `json:"expiresAt,omitempty"` // Access token expiry, when the token is a JWT
}

func (s *Server) sessionView() SessionView {
	snap := s.store.Snapshot()
	view := SessionView{
		IsLoading:       snap.IsLoading,
		IsAuthenticated: snap.IsAuthenticated(),
		User:            snap.User,
		DisplayName:     snap.User.DisplayName(),
		IsAdmin:         snap.User.IsAdmin(),
	}
	if tok, err := s.store.Token(); err == nil && !tok.Expiry.IsZero() {
		view.ExpiresAt = &tok.Expiry
	}
	return view
}

// IndexHandler describes the console to a signed in user
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{
			"appName": s.config.GetAppName(),
			"session": s.sessionView(),
		}, "")
	}
}

// LoginPageHandler is the login entry point; signed in users are sent home by the guard.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]string{
			"appName": s.config.GetAppName(),
			"submit":  "POST " + RouteAuthLogin,
		}, "")
	}
}

// LoginHandler signs in with {email, password}
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeBody(r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}

		if err := s.store.Login(r.Context(), req.Email, req.Password); err != nil {
			log.Info().Err(err).Str("email", req.Email).Msg("Login failed")
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, s.sessionView(), "Login berhasil")
	}
}

// LogoutHandler clears the session. It always succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.store.Logout(r.Context())
		writeJSON(w, http.StatusOK, map[string]string{"redirect": RouteLogin})
	}
}

// SessionHandler reports the session state, including while it is still loading.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, s.sessionView(), "")
	}
}

// ProfileHandler merges a partial profile update into the signed in user
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update users.UserUpdate
		if err := decodeBody(r, &update); err != nil {
			writeServiceError(w, r, err)
			return
		}
		if update.IsEmpty() {
			writeServiceError(w, r, errors.Wrapf(errors.ErrInvalidRequest, "no profile fields given"))
			return
		}
		if update.Status != nil && *update.Status != users.StatusOnline && *update.Status != users.StatusOffline {
			writeServiceError(w, r, errors.Wrapf(errors.ErrInvalidRequest, "status must be online or offline"))
			return
		}

		if err := s.store.UpdateUser(r.Context(), update); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, s.sessionView(), "Profil diperbarui")
	}
}

// HealthHandler reports readiness and the state of each registered dependency
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		session := "ready"
		if s.store.IsLoading() {
			session = "loading"
		}
		writeJSON(w, status, map[string]any{
			"status":  http.StatusText(status),
			"session": session,
			"checks":  checks,
		})
	}
}
