package http

import (
	"net/http"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/export/pdf"
	"budgetflow/internal/report"
)

type statusJSON struct {
	Status string    `json:"status"`
	Count  int       `json:"count"`
	Amount moneyJSON `json:"amount"`
}

type breakdownJSON struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Total moneyJSON `json:"total"`
	Count int       `json:"count"`
}

type dashboardJSON struct {
	Generation uint64  `json:"generation"`
	UpdatedAt  *string `json:"updated_at"`
	Summary    struct {
		TotalBudget   moneyJSON `json:"total_budget"`
		ReceivedFund  moneyJSON `json:"received_fund"`
		RemainingFund moneyJSON `json:"remaining_fund"`
	} `json:"summary"`
	Statuses   []statusJSON    `json:"statuses"`
	ByCategory []breakdownJSON `json:"by_category"`
	ByFunder   []breakdownJSON `json:"by_funder"`
	Recent     []expenseJSON   `json:"recent"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := s.views.View()
	if view == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard not ready")
		return
	}

	agg := view.Aggregates
	out := dashboardJSON{
		Generation: view.Generation,
		UpdatedAt:  jsonTime(view.UpdatedAt),
	}
	out.Summary.TotalBudget = money(agg.Summary.TotalBudget)
	out.Summary.ReceivedFund = money(agg.Summary.ReceivedFund)
	out.Summary.RemainingFund = money(agg.Summary.RemainingFund)

	out.Statuses = make([]statusJSON, 0, len(core.Statuses()))
	for _, st := range core.Statuses() {
		b := agg.Statuses[st]
		out.Statuses = append(out.Statuses, statusJSON{
			Status: string(st), Count: b.Count, Amount: money(b.Amount),
		})
	}

	out.ByCategory = breakdownDTOs(agg.ByCategory)
	out.ByFunder = breakdownDTOs(agg.ByFunder)

	out.Recent = make([]expenseJSON, 0, len(agg.Recent))
	for _, e := range agg.Recent {
		out.Recent = append(out.Recent, expenseDTO(e))
	}

	writeJSON(w, http.StatusOK, out)
}

func breakdownDTOs(entries []core.BreakdownEntry) []breakdownJSON {
	out := make([]breakdownJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, breakdownJSON{
			ID: e.ID, Name: e.Name, Total: money(e.TotalAmount), Count: e.Count,
		})
	}
	return out
}

type budgetJSON struct {
	TotalBudget    moneyJSON `json:"total_budget"`
	ReceivedFund   moneyJSON `json:"received_fund"`
	PeopleOverFund moneyJSON `json:"people_over_fund"`
	RemainingFund  moneyJSON `json:"remaining_fund"`
	UpdatedAt      *string   `json:"updated_at"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.budget.GetBudgetCache(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetJSON{
		TotalBudget:    money(b.TotalBudget),
		ReceivedFund:   money(b.ReceivedFund),
		PeopleOverFund: money(b.PeopleOverFund),
		RemainingFund:  money(b.RemainingFund),
		UpdatedAt:      jsonTime(b.UpdatedAt),
	})
}

type budgetPutRequest struct {
	TotalBudgetPaise    int64 `json:"total_budget_paise"`
	ReceivedFundPaise   int64 `json:"received_fund_paise"`
	PeopleOverFundPaise int64 `json:"people_over_fund_paise"`
	RemainingFundPaise  int64 `json:"remaining_fund_paise"`
}

// handlePutBudget writes the legacy budget document verbatim. It exists
// for older clients; nothing trustworthy is derived from it.
func (s *Server) handlePutBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetPutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.budget.PutBudgetCache(r.Context(), core.BudgetCache{
		TotalBudget:    core.Money{Paise: req.TotalBudgetPaise},
		ReceivedFund:   core.Money{Paise: req.ReceivedFundPaise},
		PeopleOverFund: core.Money{Paise: req.PeopleOverFundPaise},
		RemainingFund:  core.Money{Paise: req.RemainingFundPaise},
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) currentReport() (report.Document, int) {
	view := s.views.View()
	if view == nil {
		return report.Document{}, http.StatusServiceUnavailable
	}
	doc, err := report.Generate(view.Snapshot, view.Aggregates, time.Now())
	if err != nil {
		return report.Document{}, http.StatusInternalServerError
	}
	return doc, 0
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	doc, errStatus := s.currentReport()
	if errStatus != 0 {
		writeError(w, errStatus, "report unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc.HTML))
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	doc, errStatus := s.currentReport()
	if errStatus != 0 {
		writeError(w, errStatus, "report unavailable")
		return
	}
	out, err := pdf.Build(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "report unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	_, _ = w.Write(out)
}
