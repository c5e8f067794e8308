// Package memory implements the record store in process memory. It is
// the default backend for development and the fake the test suites run
// against; semantics (server-assigned ids and timestamps, whole-snapshot
// watches, list ordering) match the remote document store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetflow/internal/core"
	"budgetflow/internal/store"
)

type Store struct {
	mu         sync.Mutex
	categories []core.Category
	expenses   []core.Expense
	funders    []core.Funder
	budget     core.BudgetCache

	categoryHub *store.Hub[core.Category]
	expenseHub  *store.Hub[core.Expense]
	funderHub   *store.Hub[core.Funder]

	// test hook: when non-nil, overrides time.Now for server timestamps
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		categoryHub: store.NewHub[core.Category](),
		expenseHub:  store.NewHub[core.Expense](),
		funderHub:   store.NewHub[core.Funder](),
		now:         time.Now,
	}
}

// Categories

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotCategories(), nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.categories = append(s.categories, c)
	snap := s.snapshotCategories()
	s.mu.Unlock()

	s.categoryHub.Broadcast(snap, nil)
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id string, p store.CategoryPatch) error {
	s.mu.Lock()
	i := indexByID(s.categories, id, func(c core.Category) string { return c.ID })
	if i < 0 {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if p.Name != nil {
		s.categories[i].Name = *p.Name
	}
	if p.Description != nil {
		s.categories[i].Description = *p.Description
	}
	s.categories[i].UpdatedAt = s.now()
	snap := s.snapshotCategories()
	s.mu.Unlock()

	s.categoryHub.Broadcast(snap, nil)
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	i := indexByID(s.categories, id, func(c core.Category) string { return c.ID })
	if i < 0 {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	// No cascade: expenses keep their now-dangling CategoryID.
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	snap := s.snapshotCategories()
	s.mu.Unlock()

	s.categoryHub.Broadcast(snap, nil)
	return nil
}

func (s *Store) WatchCategories(_ context.Context, fn store.CategoriesFunc) (store.Subscription, error) {
	s.mu.Lock()
	snap := s.snapshotCategories()
	s.mu.Unlock()
	sub := s.categoryHub.Subscribe(fn)
	fn(snap, nil)
	return sub, nil
}

// Expenses

func (s *Store) ListExpenses(_ context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snapshotExpenses()
	if f.CategoryID == "" {
		return out, nil
	}
	filtered := out[:0]
	for _, e := range out {
		if e.CategoryID == f.CategoryID {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (*core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			out := e
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	s.expenses = append(s.expenses, e)
	snap := s.snapshotExpenses()
	s.mu.Unlock()

	s.expenseHub.Broadcast(snap, nil)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, p store.ExpensePatch) error {
	s.mu.Lock()
	i := indexByID(s.expenses, id, func(e core.Expense) string { return e.ID })
	if i < 0 {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	e := &s.expenses[i]
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.FunderID != nil {
		e.FunderID = *p.FunderID
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	e.UpdatedAt = s.now()
	snap := s.snapshotExpenses()
	s.mu.Unlock()

	s.expenseHub.Broadcast(snap, nil)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	i := indexByID(s.expenses, id, func(e core.Expense) string { return e.ID })
	if i < 0 {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	snap := s.snapshotExpenses()
	s.mu.Unlock()

	s.expenseHub.Broadcast(snap, nil)
	return nil
}

func (s *Store) WatchExpenses(_ context.Context, fn store.ExpensesFunc) (store.Subscription, error) {
	s.mu.Lock()
	snap := s.snapshotExpenses()
	s.mu.Unlock()
	sub := s.expenseHub.Subscribe(fn)
	fn(snap, nil)
	return sub, nil
}

// Funders

func (s *Store) ListFunders(_ context.Context) ([]core.Funder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotFunders(), nil
}

func (s *Store) GetFunder(_ context.Context, id string) (*core.Funder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.funders {
		if f.ID == id {
			out := f
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateFunder(_ context.Context, f core.Funder) (core.Funder, error) {
	s.mu.Lock()
	f.ID = uuid.NewString()
	f.CreatedAt = s.now()
	s.funders = append(s.funders, f)
	snap := s.snapshotFunders()
	s.mu.Unlock()

	s.funderHub.Broadcast(snap, nil)
	return f, nil
}

func (s *Store) UpdateFunder(_ context.Context, id string, p store.FunderPatch) error {
	s.mu.Lock()
	i := indexByID(s.funders, id, func(f core.Funder) string { return f.ID })
	if i < 0 {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if p.Name != nil {
		s.funders[i].Name = *p.Name
	}
	if p.Phone != nil {
		s.funders[i].Phone = *p.Phone
	}
	if p.Email != nil {
		s.funders[i].Email = *p.Email
	}
	s.funders[i].UpdatedAt = s.now()
	snap := s.snapshotFunders()
	s.mu.Unlock()

	s.funderHub.Broadcast(snap, nil)
	return nil
}

func (s *Store) DeleteFunder(_ context.Context, id string) error {
	s.mu.Lock()
	i := indexByID(s.funders, id, func(f core.Funder) string { return f.ID })
	if i < 0 {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	s.funders = append(s.funders[:i], s.funders[i+1:]...)
	snap := s.snapshotFunders()
	s.mu.Unlock()

	s.funderHub.Broadcast(snap, nil)
	return nil
}

func (s *Store) WatchFunders(_ context.Context, fn store.FundersFunc) (store.Subscription, error) {
	s.mu.Lock()
	snap := s.snapshotFunders()
	s.mu.Unlock()
	sub := s.funderHub.Subscribe(fn)
	fn(snap, nil)
	return sub, nil
}

// Budget cache

func (s *Store) GetBudgetCache(_ context.Context) (core.BudgetCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget, nil
}

func (s *Store) PutBudgetCache(_ context.Context, b core.BudgetCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.UpdatedAt = s.now()
	s.budget = b
	return nil
}

// snapshot helpers: copies sorted the way the remote store orders its
// listings (categories and funders by name, expenses newest first).

func (s *Store) snapshotCategories() []core.Category {
	out := append([]core.Category(nil), s.categories...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func (s *Store) snapshotExpenses() []core.Expense {
	out := append([]core.Expense(nil), s.expenses...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) snapshotFunders() []core.Funder {
	out := append([]core.Funder(nil), s.funders...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func indexByID[T any](items []T, id string, key func(T) string) int {
	for i, v := range items {
		if key(v) == id {
			return i
		}
	}
	return -1
}
