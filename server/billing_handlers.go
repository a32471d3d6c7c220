package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/billing-admin/billing"
	"github.com/jrsteele09/billing-admin/internal/errors"
)

// TransactionsView is the income history with its total
type TransactionsView struct {
	Transactions         []billing.Transaction `json:"transactions"`
	TotalIncome          int64                 `json:"totalIncome"`
	TotalIncomeFormatted string                `json:"totalIncomeFormatted"`
}

func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := s.billing.Dashboard(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, d, "")
	}
}

func (s *Server) DevicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		devices, err := s.billing.Devices(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, devices, "")
	}
}

func (s *Server) CategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := s.billing.Categories(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, categories, "")
	}
}

func (s *Server) CreateCategoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in billing.CategoryInput
		if err := decodeBody(r, &in); err != nil {
			writeServiceError(w, r, err)
			return
		}
		category, err := s.billing.CreateCategory(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, category, "Kategori ditambahkan")
	}
}

func (s *Server) UpdateCategoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		var in billing.CategoryInput
		if err := decodeBody(r, &in); err != nil {
			writeServiceError(w, r, err)
			return
		}
		category, err := s.billing.UpdateCategory(r.Context(), id, in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, category, "Kategori diperbarui")
	}
}

func (s *Server) DeleteCategoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := s.billing.DeleteCategory(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) TransactionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := s.billing.Transactions(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		total := billing.TotalIncome(txs)
		writeData(w, http.StatusOK, TransactionsView{
			Transactions:         txs,
			TotalIncome:          total,
			TotalIncomeFormatted: billing.FormatIDR(total),
		}, "")
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(errors.ErrInvalidRequest, "invalid id %q", raw)
	}
	return id, nil
}
