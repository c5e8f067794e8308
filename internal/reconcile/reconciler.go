// Package reconcile keeps an up-to-date aggregate view of the record
// store without re-reading every collection on every change. It
// subscribes to the three collection watches, caches the last snapshot
// of each, and recomputes the derived aggregates whenever any one of
// them moves. The exposed view is swapped atomically: readers always see
// a complete, internally consistent set of figures.
package reconcile

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetflow/internal/core"
	"budgetflow/internal/log"
	"budgetflow/internal/store"
)

// View is one immutable reconciliation result. Generation increases only
// when the contents actually changed; a re-delivered identical snapshot
// leaves the previous view in place.
type View struct {
	Snapshot   core.Snapshot
	Aggregates core.Aggregates
	Generation uint64
	UpdatedAt  time.Time
}

type watches interface {
	store.CategoryStore
	store.ExpenseStore
	store.FunderStore
}

// Reconciler owns three live subscriptions and the current View. One
// reconciliation pass runs at a time; watch errors retain the last good
// view rather than wiping it.
type Reconciler struct {
	st     watches
	logger *log.Logger

	mu         sync.Mutex // serializes passes, guards cached snapshots
	categories []core.Category
	expenses   []core.Expense
	funders    []core.Funder
	generation uint64

	view atomic.Pointer[View]

	subs      []store.Subscription
	closeOnce sync.Once
}

// Start subscribes to all three collections and returns a reconciler
// whose View is already populated from the initial watch deliveries.
// On error nothing stays subscribed.
func Start(ctx context.Context, st watches, logger *log.Logger) (*Reconciler, error) {
	r := &Reconciler{
		st:     st,
		logger: logger.WithComponent(log.ComponentReconcile),
	}
	empty := &View{Aggregates: core.Aggregate(core.Snapshot{})}
	r.view.Store(empty)

	var catSub, expSub, funSub store.Subscription
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := st.WatchCategories(gctx, r.onCategories)
		catSub = s
		return err
	})
	g.Go(func() error {
		s, err := st.WatchExpenses(gctx, r.onExpenses)
		expSub = s
		return err
	})
	g.Go(func() error {
		s, err := st.WatchFunders(gctx, r.onFunders)
		funSub = s
		return err
	})
	if err := g.Wait(); err != nil {
		for _, s := range []store.Subscription{catSub, expSub, funSub} {
			if s != nil {
				s.Cancel()
			}
		}
		return nil, err
	}

	r.subs = []store.Subscription{catSub, expSub, funSub}
	return r, nil
}

// View returns the current aggregate view. Never nil; cheap enough to
// call per request.
func (r *Reconciler) View() *View {
	return r.view.Load()
}

// Close cancels all three subscriptions. Idempotent; after it returns no
// further view updates occur.
func (r *Reconciler) Close() {
	r.closeOnce.Do(func() {
		for _, s := range r.subs {
			s.Cancel()
		}
		r.logger.Info("reconciler closed", log.FieldGeneration, r.View().Generation)
	})
}

func (r *Reconciler) onCategories(categories []core.Category, err error) {
	if err != nil {
		r.logger.Warn("categories watch failed, keeping last view", log.FieldError, err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = categories
	r.recompute()
}

func (r *Reconciler) onExpenses(expenses []core.Expense, err error) {
	if err != nil {
		r.logger.Warn("expenses watch failed, keeping last view", log.FieldError, err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses = expenses
	r.recompute()
}

func (r *Reconciler) onFunders(funders []core.Funder, err error) {
	if err != nil {
		r.logger.Warn("funders watch failed, keeping last view", log.FieldError, err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funders = funders
	r.recompute()
}

// recompute crosses the changed collection with the cached snapshots of
// the other two and swaps the view in one pointer store. Caller holds mu.
func (r *Reconciler) recompute() {
	snap := core.Snapshot{
		Expenses:   r.expenses,
		Categories: r.categories,
		Funders:    r.funders,
	}
	agg := core.Aggregate(snap)

	cur := r.view.Load()
	if cur != nil && agg.Equal(cur.Aggregates) && snapshotEqual(snap, cur.Snapshot) {
		return // nothing changed, no spurious update
	}

	r.generation++
	r.view.Store(&View{
		Snapshot:   snap,
		Aggregates: agg,
		Generation: r.generation,
		UpdatedAt:  time.Now(),
	})
}

func snapshotEqual(a, b core.Snapshot) bool {
	return slices.Equal(a.Expenses, b.Expenses) &&
		slices.Equal(a.Categories, b.Categories) &&
		slices.Equal(a.Funders, b.Funders)
}
