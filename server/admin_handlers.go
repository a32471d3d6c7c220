package server

import (
	"net/http"

	"github.com/jrsteele09/billing-admin/billing"
)

// blockRequest carries the state the admin saw when clicking block or unblock
type blockRequest struct {
	IsActive bool `json:"isActive"`
}

// AdminUsersListHandler lists console accounts
func (s *Server) AdminUsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.billing.Users(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, list, "")
	}
}

// AdminCreateUserHandler adds a cashier or admin account
func (s *Server) AdminCreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in billing.NewUserInput
		if err := decodeBody(r, &in); err != nil {
			writeServiceError(w, r, err)
			return
		}
		created, err := s.billing.CreateUser(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, created, "User baru berhasil ditambahkan")
	}
}

// AdminBlockUserHandler blocks an active user or unblocks a blocked one
func (s *Server) AdminBlockUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blockRequest
		if err := decodeBody(r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}
		res, err := s.billing.SetBlocked(r.Context(), r.PathValue("id"), req.IsActive)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		message := res.Message
		if message == "" {
			message = "User berhasil diblokir"
			if res.IsActive {
				message = "User berhasil dibuka blokirnya"
			}
		}
		writeData(w, http.StatusOK, res, message)
	}
}
