package http

import (
	"net/http"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
)

type funderRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

func (s *Server) handleListFunders(w http.ResponseWriter, r *http.Request) {
	funders, err := s.funders.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]funderJSON, 0, len(funders))
	for _, f := range funders {
		out = append(out, funderDTO(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFunder(w http.ResponseWriter, r *http.Request) {
	f, err := s.funders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, funderDTO(*f))
}

func (s *Server) handleCreateFunder(w http.ResponseWriter, r *http.Request) {
	var req funderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f := core.Funder{}
	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Phone != nil {
		f.Phone = *req.Phone
	}
	if req.Email != nil {
		f.Email = *req.Email
	}

	created, err := s.funders.Create(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, funderDTO(created))
}

func (s *Server) handleUpdateFunder(w http.ResponseWriter, r *http.Request) {
	var req funderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.funders.Update(r.Context(), r.PathValue("id"), store.FunderPatch{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteFunder(w http.ResponseWriter, r *http.Request) {
	if err := s.funders.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
