// Package report renders the fixed-structure expense report. The
// formatter is pure and deterministic apart from the generation
// timestamp the caller passes in; export concerns (PDF, spreadsheets,
// sharing) live elsewhere and consume the Document produced here.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"time"

	"budgetflow/internal/core"
)

//go:embed templates/report.html
var templatesFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templatesFS, "templates/report.html"))

// NotAssigned is rendered for an expense with no resolvable funder.
const NotAssigned = "Not Assigned"

const dateLayout = "02 Jan 2006"

// Document is a rendered report ready for export.
type Document struct {
	HTML        string
	Tables      Tables
	GeneratedAt time.Time
}

// Tables is the report content in structured form; the PDF and
// spreadsheet exporters render from it instead of reparsing HTML.
type Tables struct {
	Summary          core.BudgetSummary
	StatusRows       []StatusRow
	CategorySections []CategorySection
	FunderRows       []core.BreakdownEntry
	RecentRows       []ExpenseRow
}

type StatusRow struct {
	Status core.Status
	Count  int
	Amount core.Money
}

type CategorySection struct {
	ID       string
	Name     string
	Count    int
	Total    core.Money
	Expenses []ExpenseRow
}

type ExpenseRow struct {
	Title  string
	Amount core.Money
	Status core.Status
	Funder string
	Date   string
}

// Generate renders the report from a snapshot and its aggregates.
// Dangling references never fail the render: an expense with an unknown
// category simply appears in no category section, and an unknown funder
// falls back to "Not Assigned".
func Generate(snap core.Snapshot, agg core.Aggregates, generatedAt time.Time) (Document, error) {
	tables := buildTables(snap, agg)

	data := struct {
		GeneratedAt      string
		Summary          core.BudgetSummary
		StatusRows       []StatusRow
		CategorySections []CategorySection
		FunderRows       []core.BreakdownEntry
		RecentRows       []ExpenseRow
	}{
		GeneratedAt:      generatedAt.Format("02 Jan 2006 15:04"),
		Summary:          tables.Summary,
		StatusRows:       tables.StatusRows,
		CategorySections: tables.CategorySections,
		FunderRows:       tables.FunderRows,
		RecentRows:       tables.RecentRows,
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return Document{}, fmt.Errorf("render report: %w", err)
	}
	return Document{
		HTML:        buf.String(),
		Tables:      tables,
		GeneratedAt: generatedAt,
	}, nil
}

func buildTables(snap core.Snapshot, agg core.Aggregates) Tables {
	funderNames := make(map[string]string, len(snap.Funders))
	for _, f := range snap.Funders {
		funderNames[f.ID] = f.Name
	}

	statusRows := make([]StatusRow, 0, len(core.Statuses()))
	for _, s := range core.Statuses() {
		b := agg.Statuses[s]
		statusRows = append(statusRows, StatusRow{Status: s, Count: b.Count, Amount: b.Amount})
	}

	// One section per breakdown entry, in breakdown (descending total)
	// order, each listing every expense of that category newest first.
	byCategory := make(map[string][]core.Expense, len(agg.ByCategory))
	for _, e := range snap.Expenses {
		byCategory[e.CategoryID] = append(byCategory[e.CategoryID], e)
	}
	sections := make([]CategorySection, 0, len(agg.ByCategory))
	for _, entry := range agg.ByCategory {
		expenses := append([]core.Expense(nil), byCategory[entry.ID]...)
		sort.SliceStable(expenses, func(i, j int) bool {
			return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
		})
		rows := make([]ExpenseRow, 0, len(expenses))
		for _, e := range expenses {
			rows = append(rows, expenseRow(e, funderNames))
		}
		sections = append(sections, CategorySection{
			ID:       entry.ID,
			Name:     entry.Name,
			Count:    entry.Count,
			Total:    entry.TotalAmount,
			Expenses: rows,
		})
	}

	recentRows := make([]ExpenseRow, 0, len(agg.Recent))
	for _, e := range agg.Recent {
		recentRows = append(recentRows, expenseRow(e, funderNames))
	}

	return Tables{
		Summary:          agg.Summary,
		StatusRows:       statusRows,
		CategorySections: sections,
		FunderRows:       agg.ByFunder,
		RecentRows:       recentRows,
	}
}

func expenseRow(e core.Expense, funderNames map[string]string) ExpenseRow {
	funder := NotAssigned
	if e.FunderID != "" {
		if name, ok := funderNames[e.FunderID]; ok {
			funder = name
		}
	}
	date := "-"
	if !e.CreatedAt.IsZero() {
		date = e.CreatedAt.Format(dateLayout)
	}
	return ExpenseRow{
		Title:  e.Title,
		Amount: e.Amount,
		Status: e.Status,
		Funder: funder,
		Date:   date,
	}
}
