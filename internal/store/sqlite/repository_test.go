package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/log"
	"budgetflow/internal/store"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	r, err := New(filepath.Join(t.TempDir(), "budgetflow.db"), logger)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExpenseCRUD(t *testing.T) {
	ctx := context.Background()
	r := testRepo(t)

	created, err := r.CreateExpense(ctx, core.Expense{
		Title:      "tent",
		Amount:     core.Money{Paise: 150_000_00},
		CategoryID: "c1",
		Status:     core.StatusOutstanding,
		Notes:      "  waterproof  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("server must assign id and createdAt, got %+v", created)
	}

	got, err := r.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "tent" || got.Amount.Paise != 150_000_00 || got.Status != core.StatusOutstanding {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.UpdatedAt.IsZero() {
		t.Fatalf("updatedAt must be unset before first update, got %v", got.UpdatedAt)
	}

	status := core.StatusReceived
	if err := r.UpdateExpense(ctx, created.ID, store.ExpensePatch{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = r.GetExpense(ctx, created.ID)
	if got.Status != core.StatusReceived || got.UpdatedAt.IsZero() {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Title != "tent" {
		t.Fatalf("patch must leave other fields untouched: %+v", got)
	}

	if err := r.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.GetExpense(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestExpenseOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	r := testRepo(t)

	for _, e := range []core.Expense{
		{Title: "chairs", CategoryID: "c1", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding},
		{Title: "sound", CategoryID: "c2", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding},
		{Title: "tent", CategoryID: "c1", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding},
	} {
		if _, err := r.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create %s: %v", e.Title, err)
		}
		time.Sleep(2 * time.Millisecond) // distinct created_at
	}

	all, err := r.ListExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Title != "tent" || all[2].Title != "chairs" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	c1, err := r.ListExpenses(ctx, store.ExpenseFilter{CategoryID: "c1"})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(c1) != 2 || c1[0].Title != "tent" || c1[1].Title != "chairs" {
		t.Fatalf("filter wrong: %+v", c1)
	}
}

func TestCategoryAndFunderSortOrder(t *testing.T) {
	ctx := context.Background()
	r := testRepo(t)

	for _, name := range []string{"Transport", "catering", "Venue"} {
		if _, err := r.CreateCategory(ctx, core.Category{Name: name}); err != nil {
			t.Fatalf("create category %s: %v", name, err)
		}
		if _, err := r.CreateFunder(ctx, core.Funder{Name: name}); err != nil {
			t.Fatalf("create funder %s: %v", name, err)
		}
	}

	cats, err := r.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	funders, err := r.ListFunders(ctx)
	if err != nil {
		t.Fatalf("list funders: %v", err)
	}
	want := []string{"catering", "Transport", "Venue"}
	for i, w := range want {
		if cats[i].Name != w || funders[i].Name != w {
			t.Fatalf("order at %d: category %q funder %q, want %q", i, cats[i].Name, funders[i].Name, w)
		}
	}
}

func TestDeleteCategoryLeavesExpenses(t *testing.T) {
	ctx := context.Background()
	r := testRepo(t)

	cat, _ := r.CreateCategory(ctx, core.Category{Name: "Venue"})
	e, _ := r.CreateExpense(ctx, core.Expense{
		Title: "tent", CategoryID: cat.ID,
		Amount: core.Money{Paise: 100}, Status: core.StatusOutstanding,
	})

	if err := r.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	got, err := r.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("expense must survive category deletion: %v", err)
	}
	if got.CategoryID != cat.ID {
		t.Fatalf("expense keeps dangling category id, got %q", got.CategoryID)
	}
}

func TestLegacyStatusNormalizedOnScan(t *testing.T) {
	ctx := context.Background()
	r := testRepo(t)

	rows := []struct {
		raw  string
		want core.Status
	}{
		{"Done", core.StatusReceived},
		{"Took Over", core.StatusPending},
		{"Utilized", core.StatusSpent},
		{"Pending", core.StatusPending},
		{"Archived", core.Status("Archived")}, // unknown passes through
	}
	for i, row := range rows {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO expenses (id, title, amount_paise, category_id, funder_id, status, notes, created_at, updated_at)
			 VALUES (?, ?, 100, 'c', '', ?, '', ?, '')`,
			"legacy-"+row.raw, "row", row.raw, fmtTime(time.Now().Add(time.Duration(i)*time.Second)))
		if err != nil {
			t.Fatalf("seed %s: %v", row.raw, err)
		}
	}

	for _, row := range rows {
		got, err := r.GetExpense(ctx, "legacy-"+row.raw)
		if err != nil {
			t.Fatalf("get %s: %v", row.raw, err)
		}
		if got.Status != row.want {
			t.Fatalf("status %q normalized to %q, want %q", row.raw, got.Status, row.want)
		}
	}
}

func TestWatchExpensesDeliversFullSnapshots(t *testing.T) {
	ctx := context.Background()
	r := testRepo(t)

	var deliveries [][]core.Expense
	sub, err := r.WatchExpenses(ctx, func(expenses []core.Expense, err error) {
		if err != nil {
			t.Fatalf("watch error: %v", err)
		}
		deliveries = append(deliveries, expenses)
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Cancel()

	if len(deliveries) != 1 || len(deliveries[0]) != 0 {
		t.Fatalf("expected initial empty snapshot, got %d deliveries", len(deliveries))
	}

	if _, err := r.CreateExpense(ctx, core.Expense{
		Title: "tent", CategoryID: "c", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(deliveries) != 2 || len(deliveries[1]) != 1 {
		t.Fatalf("expected full snapshot after create, got %d deliveries", len(deliveries))
	}

	sub.Cancel()
	sub.Cancel() // idempotent
	if _, err := r.CreateExpense(ctx, core.Expense{
		Title: "chairs", CategoryID: "c", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding,
	}); err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("callback fired after cancel: %d deliveries", len(deliveries))
	}
}

func TestBudgetCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := testRepo(t)

	empty, err := r.GetBudgetCache(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if empty.TotalBudget.Paise != 0 {
		t.Fatalf("expected zero default row, got %+v", empty)
	}

	if err := r.PutBudgetCache(ctx, core.BudgetCache{
		TotalBudget:  core.Money{Paise: 500},
		ReceivedFund: core.Money{Paise: 200},
	}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ := r.GetBudgetCache(ctx)
	if got.TotalBudget.Paise != 500 || got.ReceivedFund.Paise != 200 || got.UpdatedAt.IsZero() {
		t.Fatalf("round trip failed: %+v", got)
	}
}
