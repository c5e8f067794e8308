// Package worker regenerates report artifacts when records change. The
// API server publishes a change event per mutation; the worker collapses
// bursts of events with a debounce window and rebuilds the HTML and PDF
// artifacts once per quiet period.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"budgetflow/internal/amqp"
	"budgetflow/internal/core"
	"budgetflow/internal/export/pdf"
	"budgetflow/internal/log"
	"budgetflow/internal/report"
	"budgetflow/internal/store"
)

// SpreadsheetExporter mirrors a report into an external spreadsheet.
// Optional; a nil exporter skips the step.
type SpreadsheetExporter interface {
	Export(ctx context.Context, doc report.Document) error
}

type ExportWorker struct {
	store     store.Store
	sheets    SpreadsheetExporter
	outputDir string
	debounce  time.Duration
	fallback  time.Duration
	logger    *log.Logger

	dirty chan struct{}
	now   func() time.Time // test hook
}

const (
	defaultDebounce = 2 * time.Second
	// Backup export interval in case change events are lost.
	defaultFallback = 15 * time.Minute
)

func NewExportWorker(st store.Store, sheets SpreadsheetExporter, outputDir string, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		store:     st,
		sheets:    sheets,
		outputDir: outputDir,
		debounce:  defaultDebounce,
		fallback:  defaultFallback,
		logger:    logger.WithComponent(log.ComponentWorker),
		dirty:     make(chan struct{}, 1),
		now:       time.Now,
	}
}

// SetIntervals overrides the debounce window and the fallback export
// interval. Non-positive values keep the defaults. Call before Run.
func (w *ExportWorker) SetIntervals(debounce, fallback time.Duration) {
	if debounce > 0 {
		w.debounce = debounce
	}
	if fallback > 0 {
		w.fallback = fallback
	}
}

// HandleChangeMessage marks the report dirty. The message body only
// tells us something changed; the export re-reads the store anyway, so
// collapsing duplicates is safe.
func (w *ExportWorker) HandleChangeMessage(msg *amqp.RecordChangeMessage) error {
	w.logger.Debug("change event received",
		log.FieldCollection, msg.Collection,
		log.FieldRecordID, msg.ID,
		"action", msg.Action)

	select {
	case w.dirty <- struct{}{}:
	default: // already marked
	}
	return nil
}

// Run drives the debounce loop until ctx ends. One export runs at a
// time; events arriving during an export mark the next round.
func (w *ExportWorker) Run(ctx context.Context) error {
	fallback := time.NewTicker(w.fallback)
	defer fallback.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-fallback.C:
			w.export(ctx)
		case <-w.dirty:
			w.waitQuiet(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.export(ctx)
		}
	}
}

// waitQuiet extends the debounce window while events keep arriving.
func (w *ExportWorker) waitQuiet(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.dirty:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			return
		}
	}
}

func (w *ExportWorker) export(ctx context.Context) {
	start := w.now()
	if err := w.Export(ctx); err != nil {
		w.logger.ErrorContext(ctx, "export failed", log.FieldError, err)
		return
	}
	w.logger.InfoContext(ctx, "report artifacts regenerated",
		log.FieldDuration, time.Since(start).Milliseconds())
}

// Export rebuilds all report artifacts from current store contents.
func (w *ExportWorker) Export(ctx context.Context) error {
	snap, err := w.snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	doc, err := report.Generate(snap, core.Aggregate(snap), w.now())
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.outputDir, "report.html"), []byte(doc.HTML), 0644); err != nil {
		return fmt.Errorf("write html artifact: %w", err)
	}

	pdfBytes, err := pdf.Build(doc)
	if err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.outputDir, "report.pdf"), pdfBytes, 0644); err != nil {
		return fmt.Errorf("write pdf artifact: %w", err)
	}

	if w.sheets != nil {
		// Spreadsheet mirroring is best effort; local artifacts are the
		// source of record.
		if err := w.sheets.Export(ctx, doc); err != nil {
			w.logger.WarnContext(ctx, "spreadsheet export failed", log.FieldError, err)
		}
	}

	return nil
}

func (w *ExportWorker) snapshot(ctx context.Context) (core.Snapshot, error) {
	expenses, err := w.store.ListExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list expenses: %w", err)
	}
	categories, err := w.store.ListCategories(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list categories: %w", err)
	}
	funders, err := w.store.ListFunders(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list funders: %w", err)
	}
	return core.Snapshot{Expenses: expenses, Categories: categories, Funders: funders}, nil
}
