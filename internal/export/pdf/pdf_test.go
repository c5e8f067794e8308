package pdf

import (
	"bytes"
	"testing"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/report"
)

func TestBuildProducesPDF(t *testing.T) {
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
	agg := core.Aggregate(snap)

	doc, err := report.Generate(snap, agg, time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	out, err := Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not look like a PDF: %q", out[:min(16, len(out))])
	}
}

func TestBuildEmptyDocument(t *testing.T) {
	doc, err := report.Generate(core.Snapshot{}, core.Aggregate(core.Snapshot{}), time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := Build(doc); err != nil {
		t.Fatalf("build empty: %v", err)
	}
}
