package http

import (
	"net/http"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
)

// Amounts arrive as decimal strings ("1500" or "1500.50") and are
// parsed to paise server-side; clients never send floats.
type expenseRequest struct {
	Title      *string `json:"title"`
	Amount     *string `json:"amount"`
	CategoryID *string `json:"category_id"`
	FunderID   *string `json:"funder_id"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter := store.ExpenseFilter{CategoryID: r.URL.Query().Get("category_id")}
	expenses, err := s.expenses.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseDTO(*e))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e := core.Expense{}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Amount != nil {
		paise, err := core.ParseDecimalToPaise(*req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		e.Amount = core.Money{Paise: paise}
	}
	if req.CategoryID != nil {
		e.CategoryID = *req.CategoryID
	}
	if req.FunderID != nil {
		e.FunderID = *req.FunderID
	}
	if req.Status != nil {
		status, err := core.ParseStatus(*req.Status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		e.Status = status
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}

	created, err := s.expenses.Create(r.Context(), e)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseDTO(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := store.ExpensePatch{
		Title:      req.Title,
		CategoryID: req.CategoryID,
		FunderID:   req.FunderID,
		Notes:      req.Notes,
	}
	if req.Amount != nil {
		paise, err := core.ParseDecimalToPaise(*req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		patch.Amount = &core.Money{Paise: paise}
	}
	if req.Status != nil {
		status, err := core.ParseStatus(*req.Status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		patch.Status = &status
	}

	if err := s.expenses.Update(r.Context(), r.PathValue("id"), patch); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
