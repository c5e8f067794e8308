// Package sqlite persists the BudgetFlow collections in a local SQLite
// database. It implements the same store.Store contract as the memory
// backend, including full-snapshot watches.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetflow/internal/core"
	"budgetflow/internal/log"
	"budgetflow/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db     *sql.DB
	logger *log.Logger

	categoryHub *store.Hub[core.Category]
	expenseHub  *store.Hub[core.Expense]
	funderHub   *store.Hub[core.Funder]
}

var _ store.Store = (*Repository)(nil)

func New(dbPath string, logger *log.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:          db,
		logger:      logger.WithComponent(log.ComponentStore),
		categoryHub: store.NewHub[core.Category](),
		expenseHub:  store.NewHub[core.Expense](),
		funderHub:   store.NewHub[core.Funder](),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Timestamps are stored as RFC3339 text. Empty string means unset.
func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// normalizeStatus maps the status vocabulary older writers used onto the
// current one. Anything else passes through untouched so the aggregation
// layer can apply its own drop rule.
func normalizeStatus(s string) core.Status {
	switch strings.TrimSpace(s) {
	case "Took Over":
		return core.StatusPending
	case "Done":
		return core.StatusReceived
	case "Utilized":
		return core.StatusSpent
	default:
		return core.Status(strings.TrimSpace(s))
	}
}

// Categories

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM categories ORDER BY LOWER(name), id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var created, updated string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt = parseTime(created)
		c.UpdatedAt = parseTime(updated)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	var c core.Category
	var created, updated string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Time{}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, fmtTime(c.CreatedAt), "")
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	r.logger.Info("category created", log.FieldRecordID, c.ID, "name", c.Name)
	r.broadcastCategories(ctx)
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id string, p store.CategoryPatch) error {
	cur, err := r.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.Description != nil {
		cur.Description = *p.Description
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		cur.Name, cur.Description, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	r.broadcastCategories(ctx)
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	// Expenses keep their category_id; the dashboard treats the dangling
	// reference as an orphan rather than cascading the delete.
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	r.logger.Info("category deleted", log.FieldRecordID, id)
	r.broadcastCategories(ctx)
	return nil
}

func (r *Repository) WatchCategories(ctx context.Context, fn store.CategoriesFunc) (store.Subscription, error) {
	initial, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	sub := r.categoryHub.Subscribe(fn)
	fn(initial, nil)
	return sub, nil
}

func (r *Repository) broadcastCategories(ctx context.Context) {
	items, err := r.ListCategories(ctx)
	if err != nil {
		r.logger.Warn("category snapshot failed", log.FieldError, err)
	}
	r.categoryHub.Broadcast(items, err)
}

// Funders

func (r *Repository) ListFunders(ctx context.Context) ([]core.Funder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, phone, email, created_at, updated_at
		 FROM funders ORDER BY LOWER(name), id`)
	if err != nil {
		return nil, fmt.Errorf("list funders: %w", err)
	}
	defer rows.Close()

	var out []core.Funder
	for rows.Next() {
		var f core.Funder
		var created, updated string
		if err := rows.Scan(&f.ID, &f.Name, &f.Phone, &f.Email, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan funder: %w", err)
		}
		f.CreatedAt = parseTime(created)
		f.UpdatedAt = parseTime(updated)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list funders: %w", err)
	}
	return out, nil
}

func (r *Repository) GetFunder(ctx context.Context, id string) (*core.Funder, error) {
	var f core.Funder
	var created, updated string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, phone, email, created_at, updated_at
		 FROM funders WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.Phone, &f.Email, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get funder: %w", err)
	}
	f.CreatedAt = parseTime(created)
	f.UpdatedAt = parseTime(updated)
	return &f, nil
}

func (r *Repository) CreateFunder(ctx context.Context, f core.Funder) (core.Funder, error) {
	f.ID = uuid.NewString()
	f.CreatedAt = time.Now()
	f.UpdatedAt = time.Time{}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO funders (id, name, phone, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Phone, f.Email, fmtTime(f.CreatedAt), "")
	if err != nil {
		return core.Funder{}, fmt.Errorf("create funder: %w", err)
	}

	r.logger.Info("funder created", log.FieldRecordID, f.ID, "name", f.Name)
	r.broadcastFunders(ctx)
	return f, nil
}

func (r *Repository) UpdateFunder(ctx context.Context, id string, p store.FunderPatch) error {
	cur, err := r.GetFunder(ctx, id)
	if err != nil {
		return err
	}
	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.Phone != nil {
		cur.Phone = *p.Phone
	}
	if p.Email != nil {
		cur.Email = *p.Email
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE funders SET name = ?, phone = ?, email = ?, updated_at = ? WHERE id = ?`,
		cur.Name, cur.Phone, cur.Email, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update funder: %w", err)
	}

	r.broadcastFunders(ctx)
	return nil
}

func (r *Repository) DeleteFunder(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM funders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete funder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	r.logger.Info("funder deleted", log.FieldRecordID, id)
	r.broadcastFunders(ctx)
	return nil
}

func (r *Repository) WatchFunders(ctx context.Context, fn store.FundersFunc) (store.Subscription, error) {
	initial, err := r.ListFunders(ctx)
	if err != nil {
		return nil, err
	}
	sub := r.funderHub.Subscribe(fn)
	fn(initial, nil)
	return sub, nil
}

func (r *Repository) broadcastFunders(ctx context.Context) {
	items, err := r.ListFunders(ctx)
	if err != nil {
		r.logger.Warn("funder snapshot failed", log.FieldError, err)
	}
	r.funderHub.Broadcast(items, err)
}

// Expenses

const expenseColumns = `id, title, amount_paise, category_id, funder_id, status, notes, created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	var status, created, updated string
	err := row.Scan(&e.ID, &e.Title, &e.Amount.Paise, &e.CategoryID, &e.FunderID,
		&status, &e.Notes, &created, &updated)
	if err != nil {
		return core.Expense{}, err
	}
	e.Status = normalizeStatus(status)
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return e, nil
}

func (r *Repository) ListExpenses(ctx context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses`
	var args []any
	if f.CategoryID != "" {
		query += ` WHERE category_id = ?`
		args = append(args, f.CategoryID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (r *Repository) GetExpense(ctx context.Context, id string) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return &e, nil
}

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	e.UpdatedAt = time.Time{}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Amount.Paise, e.CategoryID, e.FunderID,
		string(e.Status), e.Notes, fmtTime(e.CreatedAt), "")
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	r.logger.Info("expense created",
		log.FieldRecordID, e.ID, log.FieldTitle, e.Title, log.FieldAmount, e.Amount.Paise)
	r.broadcastExpenses(ctx)
	return e, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, id string, p store.ExpensePatch) error {
	cur, err := r.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if p.Title != nil {
		cur.Title = *p.Title
	}
	if p.Amount != nil {
		cur.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		cur.CategoryID = *p.CategoryID
	}
	if p.FunderID != nil {
		cur.FunderID = *p.FunderID
	}
	if p.Status != nil {
		cur.Status = *p.Status
	}
	if p.Notes != nil {
		cur.Notes = *p.Notes
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET title = ?, amount_paise = ?, category_id = ?, funder_id = ?,
		     status = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		cur.Title, cur.Amount.Paise, cur.CategoryID, cur.FunderID,
		string(cur.Status), cur.Notes, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	r.broadcastExpenses(ctx)
	return nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	r.logger.Info("expense deleted", log.FieldRecordID, id)
	r.broadcastExpenses(ctx)
	return nil
}

func (r *Repository) WatchExpenses(ctx context.Context, fn store.ExpensesFunc) (store.Subscription, error) {
	initial, err := r.ListExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		return nil, err
	}
	sub := r.expenseHub.Subscribe(fn)
	fn(initial, nil)
	return sub, nil
}

func (r *Repository) broadcastExpenses(ctx context.Context) {
	items, err := r.ListExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		r.logger.Warn("expense snapshot failed", log.FieldError, err)
	}
	r.expenseHub.Broadcast(items, err)
}

// Budget cache

func (r *Repository) GetBudgetCache(ctx context.Context) (core.BudgetCache, error) {
	var b core.BudgetCache
	var updated string
	err := r.db.QueryRowContext(ctx,
		`SELECT total_budget_paise, received_fund_paise, people_over_fund_paise,
		        remaining_fund_paise, updated_at
		 FROM budget_cache WHERE id = 1`).
		Scan(&b.TotalBudget.Paise, &b.ReceivedFund.Paise,
			&b.PeopleOverFund.Paise, &b.RemainingFund.Paise, &updated)
	if err != nil {
		return core.BudgetCache{}, fmt.Errorf("get budget cache: %w", err)
	}
	b.UpdatedAt = parseTime(updated)
	return b, nil
}

func (r *Repository) PutBudgetCache(ctx context.Context, b core.BudgetCache) error {
	b.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE budget_cache
		 SET total_budget_paise = ?, received_fund_paise = ?,
		     people_over_fund_paise = ?, remaining_fund_paise = ?, updated_at = ?
		 WHERE id = 1`,
		b.TotalBudget.Paise, b.ReceivedFund.Paise,
		b.PeopleOverFund.Paise, b.RemainingFund.Paise, fmtTime(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put budget cache: %w", err)
	}
	return nil
}
