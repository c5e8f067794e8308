package core

import (
	"maps"
	"slices"
	"sort"
)

type (
	// BudgetSummary is the headline dashboard figure set. ReceivedFund
	// counts expenses whose status is exactly Received; funds already
	// spent are not double-counted here.
	BudgetSummary struct {
		TotalBudget   Money
		ReceivedFund  Money
		RemainingFund Money
	}

	StatusBucket struct {
		Count  int
		Amount Money
	}

	// StatusBreakdown always carries all four statuses, zero-initialized.
	StatusBreakdown map[Status]StatusBucket

	// BreakdownEntry is one row of a category or funder breakdown.
	BreakdownEntry struct {
		ID          string
		Name        string
		TotalAmount Money
		Count       int
	}

	// Aggregates bundles every derived view the dashboard and the report
	// consume. Produced by Aggregate from a snapshot; all fields are
	// value-complete even when the snapshot is empty or malformed.
	Aggregates struct {
		Summary    BudgetSummary
		Statuses   StatusBreakdown
		ByCategory []BreakdownEntry
		ByFunder   []BreakdownEntry
		Recent     []Expense
	}
)

// RecentLimit is how many expenses the "recent" view keeps.
const RecentLimit = 5

// amountOrZero guards summation against malformed records: a negative
// amount slipped past validation counts as zero rather than skewing (or
// crashing) the whole dashboard.
func amountOrZero(e Expense) int64 {
	if e.Amount.Paise < 0 {
		return 0
	}
	return e.Amount.Paise
}

// ComputeBudgetSummary sums every expense into TotalBudget regardless of
// status, counts Received amounts as secured funds, and reports the rest
// as remaining.
func ComputeBudgetSummary(expenses []Expense) BudgetSummary {
	var total, received int64
	for _, e := range expenses {
		amt := amountOrZero(e)
		total += amt
		if e.Status == StatusReceived {
			received += amt
		}
	}
	return BudgetSummary{
		TotalBudget:   Money{Paise: total},
		ReceivedFund:  Money{Paise: received},
		RemainingFund: Money{Paise: total - received},
	}
}

// ComputeStatusBreakdown partitions expenses into the four lifecycle
// buckets in one pass. Expenses carrying an unrecognized status fall into
// no bucket; they still count toward the budget summary.
func ComputeStatusBreakdown(expenses []Expense) StatusBreakdown {
	out := make(StatusBreakdown, len(Statuses()))
	for _, s := range Statuses() {
		out[s] = StatusBucket{}
	}
	for _, e := range expenses {
		bucket, ok := out[e.Status]
		if !ok {
			continue
		}
		bucket.Count++
		bucket.Amount.Paise += amountOrZero(e)
		out[e.Status] = bucket
	}
	return out
}

// ComputeCategoryBreakdown totals expenses per category. Categories with
// no matching expenses are excluded; the result is sorted descending by
// total with ties kept in the categories' original order. Expenses whose
// CategoryID resolves to no known category contribute nowhere.
func ComputeCategoryBreakdown(categories []Category, expenses []Expense) []BreakdownEntry {
	index := make(map[string]int, len(categories))
	entries := make([]BreakdownEntry, len(categories))
	for i, c := range categories {
		index[c.ID] = i
		entries[i] = BreakdownEntry{ID: c.ID, Name: c.Name}
	}
	for _, e := range expenses {
		if e.CategoryID == "" {
			continue
		}
		i, ok := index[e.CategoryID]
		if !ok {
			continue
		}
		entries[i].TotalAmount.Paise += amountOrZero(e)
		entries[i].Count++
	}
	return filterAndRank(entries)
}

// ComputeFunderBreakdown is the funder-keyed twin of the category
// breakdown; expenses without a funder (or with a dangling FunderID)
// contribute nowhere.
func ComputeFunderBreakdown(funders []Funder, expenses []Expense) []BreakdownEntry {
	index := make(map[string]int, len(funders))
	entries := make([]BreakdownEntry, len(funders))
	for i, f := range funders {
		index[f.ID] = i
		entries[i] = BreakdownEntry{ID: f.ID, Name: f.Name}
	}
	for _, e := range expenses {
		if e.FunderID == "" {
			continue
		}
		i, ok := index[e.FunderID]
		if !ok {
			continue
		}
		entries[i].TotalAmount.Paise += amountOrZero(e)
		entries[i].Count++
	}
	return filterAndRank(entries)
}

func filterAndRank(entries []BreakdownEntry) []BreakdownEntry {
	out := make([]BreakdownEntry, 0, len(entries))
	for _, e := range entries {
		if e.TotalAmount.Paise > 0 {
			out = append(out, e)
		}
	}
	// Stable: ties keep original collection order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAmount.Paise > out[j].TotalAmount.Paise
	})
	return out
}

// RecentExpenses returns the n most recently created expenses, newest
// first. A zero CreatedAt sorts as oldest. The sort is stable so expenses
// sharing a timestamp keep their input order. The input slice is not
// mutated.
func RecentExpenses(expenses []Expense, n int) []Expense {
	if n <= 0 {
		return []Expense{}
	}
	sorted := slices.Clone(expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Aggregate derives every dashboard view from one snapshot. Pure: same
// snapshot in, same aggregates out, inputs untouched.
func Aggregate(s Snapshot) Aggregates {
	return Aggregates{
		Summary:    ComputeBudgetSummary(s.Expenses),
		Statuses:   ComputeStatusBreakdown(s.Expenses),
		ByCategory: ComputeCategoryBreakdown(s.Categories, s.Expenses),
		ByFunder:   ComputeFunderBreakdown(s.Funders, s.Expenses),
		Recent:     RecentExpenses(s.Expenses, RecentLimit),
	}
}

// Equal reports whether two aggregate sets are identical. The reconciler
// uses this to suppress spurious view updates when a re-delivered
// snapshot changes nothing.
func (a Aggregates) Equal(b Aggregates) bool {
	return a.Summary == b.Summary &&
		maps.Equal(a.Statuses, b.Statuses) &&
		slices.Equal(a.ByCategory, b.ByCategory) &&
		slices.Equal(a.Recent, b.Recent) &&
		slices.Equal(a.ByFunder, b.ByFunder)
}
