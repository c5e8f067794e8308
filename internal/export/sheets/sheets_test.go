package sheets

import (
	"testing"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/report"
)

func TestBuildRowsLayout(t *testing.T) {
	snap := core.Snapshot{
		Categories: []core.Category{{ID: "c1", Name: "Venue"}},
		Funders:    []core.Funder{{ID: "f1", Name: "Rotary Club"}},
		Expenses: []core.Expense{
			{
				ID: "e1", Title: "tent", Amount: core.Money{Paise: 150_000_00},
				CategoryID: "c1", FunderID: "f1", Status: core.StatusReceived,
				CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	doc, err := report.Generate(snap, core.Aggregate(snap), time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	rows := buildRows(doc)

	if len(rows) == 0 || rows[0][0] != "BudgetFlow Expense Report" {
		t.Fatalf("missing report header, first row: %v", rows[0])
	}
	if rows[1][1] != "02 May 2024 09:30" {
		t.Errorf("generated-on cell = %v", rows[1][1])
	}

	var sections []string
	for _, row := range rows {
		if len(row) == 1 {
			if s, ok := row[0].(string); ok {
				sections = append(sections, s)
			}
		}
	}
	want := []string{"BudgetFlow Expense Report", "Budget Summary", "Expense Status", "Expenses by Category", "Expenses by Funder", "Recent Expenses"}
	if len(sections) != len(want) {
		t.Fatalf("section headers = %v, want %v", sections, want)
	}
	for i := range want {
		if sections[i] != want[i] {
			t.Errorf("section %d = %q, want %q", i, sections[i], want[i])
		}
	}

	// Summary uses the same currency formatting as the HTML report.
	if rows[4][1] != "Rs. 150,000" {
		t.Errorf("total budget cell = %v", rows[4][1])
	}
}
