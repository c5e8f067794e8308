// Package pdf renders a report Document as a PDF. It draws from the
// structured tables, not the HTML, so layout stays independent of the
// web template.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"budgetflow/internal/report"
)

func Build(doc report.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("BudgetFlow Expense Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BudgetFlow Expense Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Generated on: "+doc.GeneratedAt.Format("02 Jan 2006 15:04"))
	pdf.Ln(12)

	t := doc.Tables

	sectionTitle(pdf, "Budget Summary")
	pdf.SetFont("Helvetica", "", 11)
	summaryRow(pdf, "Total Budget", t.Summary.TotalBudget.String())
	summaryRow(pdf, "Received Fund", t.Summary.ReceivedFund.String())
	summaryRow(pdf, "Remaining Fund", t.Summary.RemainingFund.String())
	pdf.Ln(6)

	sectionTitle(pdf, "Expense Status")
	tableHeader(pdf, []colSpec{{60, "Status"}, {30, "Count"}, {60, "Amount"}})
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range t.StatusRows {
		pdf.Cell(60, 7, string(row.Status))
		pdf.Cell(30, 7, fmt.Sprintf("%d", row.Count))
		pdf.Cell(60, 7, row.Amount.String())
		pdf.Ln(7)
	}
	pdf.Ln(6)

	sectionTitle(pdf, "Expenses by Category")
	for _, section := range t.CategorySections {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("%s  (%d, %s)", section.Name, section.Count, section.Total))
		pdf.Ln(8)
		expenseTable(pdf, section.Expenses)
		pdf.Ln(3)
	}
	pdf.Ln(3)

	sectionTitle(pdf, "Expenses by Funder")
	tableHeader(pdf, []colSpec{{80, "Funder"}, {30, "Count"}, {60, "Amount"}})
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range t.FunderRows {
		pdf.Cell(80, 7, row.Name)
		pdf.Cell(30, 7, fmt.Sprintf("%d", row.Count))
		pdf.Cell(60, 7, row.TotalAmount.String())
		pdf.Ln(7)
	}
	pdf.Ln(6)

	sectionTitle(pdf, "Recent Expenses")
	expenseTable(pdf, t.RecentRows)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type colSpec struct {
	width float64
	title string
}

func summaryRow(pdf *gofpdf.Fpdf, label, amount string) {
	pdf.Cell(60, 7, label)
	pdf.Cell(60, 7, amount)
	pdf.Ln(7)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func tableHeader(pdf *gofpdf.Fpdf, cols []colSpec) {
	pdf.SetFont("Helvetica", "B", 11)
	for _, c := range cols {
		pdf.Cell(c.width, 7, c.title)
	}
	pdf.Ln(7)
}

func expenseTable(pdf *gofpdf.Fpdf, rows []report.ExpenseRow) {
	tableHeader(pdf, []colSpec{{55, "Title"}, {35, "Amount"}, {28, "Status"}, {42, "Funder"}, {30, "Date"}})
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.Cell(55, 7, row.Title)
		pdf.Cell(35, 7, row.Amount.String())
		pdf.Cell(28, 7, string(row.Status))
		pdf.Cell(42, 7, row.Funder)
		pdf.Cell(30, 7, row.Date)
		pdf.Ln(7)
	}
}
