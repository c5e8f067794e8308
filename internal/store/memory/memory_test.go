package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
)

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateCategory(ctx, core.Category{Name: "Venue"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("server must assign id and createdAt, got %+v", created)
	}

	got, err := s.GetCategory(ctx, created.ID)
	if err != nil || got.Name != "Venue" {
		t.Fatalf("get: (%+v, %v)", got, err)
	}

	name := "Venue & Stage"
	if err := s.UpdateCategory(ctx, created.ID, store.CategoryPatch{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.GetCategory(ctx, created.ID)
	if got.Name != name || got.UpdatedAt.IsZero() {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetCategory(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListCategoriesSortedByName(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, name := range []string{"Transport", "catering", "Venue"} {
		if _, err := s.CreateCategory(ctx, core.Category{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	got, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"catering", "Transport", "Venue"}
	for i, w := range want {
		if got[i].Name != w {
			t.Fatalf("order: got %q at %d, want %q", got[i].Name, i, w)
		}
	}
}

func TestListExpensesFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, e := range []core.Expense{
		{Title: "chairs", CategoryID: "c1", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding},
		{Title: "sound", CategoryID: "c2", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding},
		{Title: "tent", CategoryID: "c1", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding},
	} {
		if _, err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := s.ListExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Title != "tent" || all[2].Title != "chairs" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	c1, err := s.ListExpenses(ctx, store.ExpenseFilter{CategoryID: "c1"})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(c1) != 2 || c1[0].Title != "tent" || c1[1].Title != "chairs" {
		t.Fatalf("filter wrong: %+v", c1)
	}
}

func TestDeleteCategoryDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	s := New()
	cat, _ := s.CreateCategory(ctx, core.Category{Name: "Venue"})
	e, _ := s.CreateExpense(ctx, core.Expense{
		Title: "tent", CategoryID: cat.ID,
		Amount: core.Money{Paise: 100}, Status: core.StatusOutstanding,
	})

	if err := s.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	got, err := s.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("expense must survive category deletion: %v", err)
	}
	if got.CategoryID != cat.ID {
		t.Fatalf("expense keeps dangling category id, got %q", got.CategoryID)
	}
}

func TestWatchExpensesDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	var deliveries [][]core.Expense
	sub, err := s.WatchExpenses(ctx, func(expenses []core.Expense, err error) {
		if err != nil {
			t.Fatalf("watch error: %v", err)
		}
		deliveries = append(deliveries, expenses)
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Cancel()

	// Initial snapshot arrives on subscribe.
	if len(deliveries) != 1 || len(deliveries[0]) != 0 {
		t.Fatalf("expected initial empty snapshot, got %d deliveries", len(deliveries))
	}

	if _, err := s.CreateExpense(ctx, core.Expense{
		Title: "tent", CategoryID: "c", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Whole collection, not a delta.
	if len(deliveries) != 2 || len(deliveries[1]) != 1 {
		t.Fatalf("expected full snapshot after create, got %+v", deliveries)
	}
}

func TestWatchCancelStopsCallbacks(t *testing.T) {
	ctx := context.Background()
	s := New()

	calls := 0
	sub, err := s.WatchExpenses(ctx, func([]core.Expense, error) { calls++ })
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected initial delivery, got %d", calls)
	}

	sub.Cancel()
	sub.Cancel() // idempotent

	if _, err := s.CreateExpense(ctx, core.Expense{
		Title: "tent", CategoryID: "c", Amount: core.Money{Paise: 1}, Status: core.StatusOutstanding,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if calls != 1 {
		t.Fatalf("callback fired after cancel: %d calls", calls)
	}
}

func TestBudgetCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	empty, err := s.GetBudgetCache(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if empty.TotalBudget.Paise != 0 {
		t.Fatalf("expected zero default, got %+v", empty)
	}

	if err := s.PutBudgetCache(ctx, core.BudgetCache{
		TotalBudget:  core.Money{Paise: 500},
		ReceivedFund: core.Money{Paise: 200},
	}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ := s.GetBudgetCache(ctx)
	if got.TotalBudget.Paise != 500 || got.UpdatedAt.IsZero() {
		t.Fatalf("round trip failed: %+v", got)
	}
}
