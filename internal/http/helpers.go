package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/services"
	"budgetflow/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrUnknownCategory),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrAmountTooLarge),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrNotesTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// timestamps render as RFC3339; the zero time renders as null.
func jsonTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

type moneyJSON struct {
	Paise     int64  `json:"paise"`
	Formatted string `json:"formatted"`
}

func money(m core.Money) moneyJSON {
	return moneyJSON{Paise: m.Paise, Formatted: m.String()}
}

type categoryJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

func categoryDTO(c core.Category) categoryJSON {
	return categoryJSON{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   jsonTime(c.CreatedAt),
		UpdatedAt:   jsonTime(c.UpdatedAt),
	}
}

type funderJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone,omitempty"`
	Email     string  `json:"email,omitempty"`
	CreatedAt *string `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

func funderDTO(f core.Funder) funderJSON {
	return funderJSON{
		ID:        f.ID,
		Name:      f.Name,
		Phone:     f.Phone,
		Email:     f.Email,
		CreatedAt: jsonTime(f.CreatedAt),
		UpdatedAt: jsonTime(f.UpdatedAt),
	}
}

type expenseJSON struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Amount     moneyJSON `json:"amount"`
	CategoryID string    `json:"category_id"`
	FunderID   string    `json:"funder_id,omitempty"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  *string   `json:"created_at"`
	UpdatedAt  *string   `json:"updated_at"`
}

func expenseDTO(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:         e.ID,
		Title:      e.Title,
		Amount:     money(e.Amount),
		CategoryID: e.CategoryID,
		FunderID:   e.FunderID,
		Status:     string(e.Status),
		Notes:      e.Notes,
		CreatedAt:  jsonTime(e.CreatedAt),
		UpdatedAt:  jsonTime(e.UpdatedAt),
	}
}
