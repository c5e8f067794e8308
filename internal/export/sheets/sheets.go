// Package sheets mirrors the report tables into a Google Spreadsheet so
// the figures can be shared outside the app. The export rewrites one
// sheet wholesale on every run; there is no incremental sync.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetflow/internal/log"
	"budgetflow/internal/report"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_REPORT_SHEET_NAME (default "Report").
func NewFromEnv(ctx context.Context, logger *log.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_REPORT_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Report"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Export replaces the report sheet contents with the document's tables.
func (c *Client) Export(ctx context.Context, doc report.Document) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := buildRows(doc)

	clearRange := fmt.Sprintf("%s!A:E", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write report to sheet %s: %w", c.sheetName, err)
	}

	c.logger.InfoContext(ctx, "report exported to spreadsheet",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName,
		"rows", len(rows))
	return nil
}

// buildRows flattens the report tables into one sheet, section by
// section, blank row between sections.
func buildRows(doc report.Document) [][]any {
	t := doc.Tables
	rows := [][]any{
		{"BudgetFlow Expense Report"},
		{"Generated on:", doc.GeneratedAt.Format("02 Jan 2006 15:04")},
		{},
		{"Budget Summary"},
		{"Total Budget", t.Summary.TotalBudget.String()},
		{"Received Fund", t.Summary.ReceivedFund.String()},
		{"Remaining Fund", t.Summary.RemainingFund.String()},
		{},
		{"Expense Status"},
		{"Status", "Count", "Amount"},
	}
	for _, r := range t.StatusRows {
		rows = append(rows, []any{string(r.Status), r.Count, r.Amount.String()})
	}

	rows = append(rows, []any{}, []any{"Expenses by Category"})
	for _, section := range t.CategorySections {
		rows = append(rows,
			[]any{section.Name, section.Count, section.Total.String()},
			[]any{"Title", "Amount", "Status", "Funder", "Date"})
		for _, e := range section.Expenses {
			rows = append(rows, expenseRow(e))
		}
		rows = append(rows, []any{})
	}

	rows = append(rows, []any{"Expenses by Funder"}, []any{"Funder", "Count", "Amount"})
	for _, r := range t.FunderRows {
		rows = append(rows, []any{r.Name, r.Count, r.TotalAmount.String()})
	}

	rows = append(rows, []any{}, []any{"Recent Expenses"},
		[]any{"Title", "Amount", "Status", "Funder", "Date"})
	for _, e := range t.RecentRows {
		rows = append(rows, expenseRow(e))
	}

	return rows
}

func expenseRow(e report.ExpenseRow) []any {
	return []any{e.Title, e.Amount.String(), string(e.Status), e.Funder, e.Date}
}
