package worker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"budgetflow/internal/amqp"
	"budgetflow/internal/core"
	"budgetflow/internal/log"
	"budgetflow/internal/report"
	"budgetflow/internal/store/memory"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	cat, err := st.CreateCategory(ctx, core.Category{Name: "Venue"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if _, err := st.CreateExpense(ctx, core.Expense{
		Title: "tent", Amount: core.Money{Paise: 150_000_00},
		CategoryID: cat.ID, Status: core.StatusReceived,
	}); err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	return st
}

func TestExportWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewExportWorker(seedStore(t), nil, dir, quietLogger())

	if err := w.Export(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}

	html, err := os.ReadFile(filepath.Join(dir, "report.html"))
	if err != nil {
		t.Fatalf("read html artifact: %v", err)
	}
	if !strings.Contains(string(html), "Rs. 150,000") {
		t.Errorf("html artifact missing totals")
	}

	pdfBytes, err := os.ReadFile(filepath.Join(dir, "report.pdf"))
	if err != nil {
		t.Fatalf("read pdf artifact: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF-")) {
		t.Errorf("pdf artifact has wrong header")
	}
}

type fakeExporter struct {
	calls atomic.Int32
	err   error
}

func (f *fakeExporter) Export(context.Context, report.Document) error {
	f.calls.Add(1)
	return f.err
}

func TestExportSpreadsheetFailureIsNonFatal(t *testing.T) {
	exp := &fakeExporter{err: errors.New("quota exceeded")}
	w := NewExportWorker(seedStore(t), exp, t.TempDir(), quietLogger())

	if err := w.Export(context.Background()); err != nil {
		t.Fatalf("export must tolerate spreadsheet failure: %v", err)
	}
	if n := exp.calls.Load(); n != 1 {
		t.Errorf("exporter calls = %d, want 1", n)
	}
}

func TestRunDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	exp := &fakeExporter{}
	w := NewExportWorker(seedStore(t), exp, dir, quietLogger())
	w.debounce = 20 * time.Millisecond
	w.fallback = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	// A burst of events should collapse into one export.
	for i := 0; i < 5; i++ {
		if err := w.HandleChangeMessage(amqp.NewRecordChangeMessage(amqp.CollectionExpenses, "e1", amqp.ActionUpdated)); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for exp.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if n := exp.calls.Load(); n != 1 {
		t.Fatalf("exports = %d, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.pdf")); err != nil {
		t.Errorf("pdf artifact missing: %v", err)
	}
}
