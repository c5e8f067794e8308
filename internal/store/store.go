// Package store defines the record-store contract the rest of BudgetFlow
// is written against: per-collection CRUD plus a watch operation that
// delivers the full collection contents on every change (never deltas).
package store

import (
	"context"
	"errors"

	"budgetflow/internal/core"
)

// ErrNotFound is returned when an id resolves to no record.
var ErrNotFound = errors.New("record not found")

// Subscription is a live watch registration. Cancel is idempotent:
// calling it twice is a no-op, and no callback fires after it returns.
type Subscription interface {
	Cancel()
}

// Watch callbacks receive the full current collection on every change,
// including one delivery immediately after subscribing. A non-nil err
// means the snapshot could not be produced; the slice is nil then and the
// consumer should keep whatever state it already has.
type (
	CategoriesFunc func(categories []core.Category, err error)
	ExpensesFunc   func(expenses []core.Expense, err error)
	FundersFunc    func(funders []core.Funder, err error)
)

// ExpenseFilter narrows a listing by a single equality predicate.
// The zero value matches everything.
type ExpenseFilter struct {
	CategoryID string
}

// Patches carry partial updates; nil fields are left untouched. The
// server side owns UpdatedAt.
type (
	CategoryPatch struct {
		Name        *string
		Description *string
	}

	FunderPatch struct {
		Name  *string
		Phone *string
		Email *string
	}

	ExpensePatch struct {
		Title      *string
		Amount     *core.Money
		CategoryID *string
		FunderID   *string
		Status     *core.Status
		Notes      *string
	}
)

// Ports per collection. Create assigns the id and CreatedAt; Update
// assigns UpdatedAt. Deleting a category does not cascade to its
// expenses.
type (
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		GetCategory(ctx context.Context, id string) (*core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, id string, p CategoryPatch) error
		DeleteCategory(ctx context.Context, id string) error
		WatchCategories(ctx context.Context, fn CategoriesFunc) (Subscription, error)
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
		GetExpense(ctx context.Context, id string) (*core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, id string, p ExpensePatch) error
		DeleteExpense(ctx context.Context, id string) error
		WatchExpenses(ctx context.Context, fn ExpensesFunc) (Subscription, error)
	}

	FunderStore interface {
		ListFunders(ctx context.Context) ([]core.Funder, error)
		GetFunder(ctx context.Context, id string) (*core.Funder, error)
		CreateFunder(ctx context.Context, f core.Funder) (core.Funder, error)
		UpdateFunder(ctx context.Context, id string, p FunderPatch) error
		DeleteFunder(ctx context.Context, id string) error
		WatchFunders(ctx context.Context, fn FundersFunc) (Subscription, error)
	}

	// BudgetStore holds the legacy singleton budget document.
	BudgetStore interface {
		GetBudgetCache(ctx context.Context) (core.BudgetCache, error)
		PutBudgetCache(ctx context.Context, b core.BudgetCache) error
	}

	// Store is the full record-store surface a backend must provide.
	Store interface {
		CategoryStore
		ExpenseStore
		FunderStore
		BudgetStore
	}
)
