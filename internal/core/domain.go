package core

import (
	"errors"
	"strings"
	"time"
)

// Status tags where an expense sits in the fund lifecycle. Transitions are
// not enforced: any valid status may be written at any time.
const (
	StatusOutstanding Status = "Outstanding"
	StatusPending     Status = "Pending"
	StatusReceived    Status = "Received"
	StatusSpent       Status = "Spent"
)

// MaxAmount is the ceiling for a single expense: Rs. 10,000,000.
const MaxAmount = 10_000_000 * 100

// MaxNotesLen bounds the notes field after HTML stripping.
const MaxNotesLen = 1000

type (
	Status string

	Category struct {
		ID          string
		Name        string
		Description string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Funder struct {
		ID        string
		Name      string
		Phone     string
		Email     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Expense struct {
		ID         string
		Title      string
		Amount     Money
		CategoryID string
		FunderID   string // empty means no funder assigned
		Status     Status
		Notes      string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// BudgetCache mirrors the legacy singleton budget document. It is a
	// cache kept for older clients, never a source of truth; the
	// aggregation engine derives the same figures from expenses directly.
	BudgetCache struct {
		TotalBudget    Money
		ReceivedFund   Money
		PeopleOverFund Money
		RemainingFund  Money
		UpdatedAt      time.Time
	}

	// Snapshot is the full contents of the three collections at a point
	// in time, as delivered by the record store's watch mechanism.
	Snapshot struct {
		Expenses   []Expense
		Categories []Category
		Funders    []Funder
	}
)

var (
	ErrEmptyTitle      = errors.New("empty title")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAmountTooLarge  = errors.New("amount exceeds ceiling")
	ErrMissingCategory = errors.New("missing category")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrNotesTooLong    = errors.New("notes too long")
)

// Statuses returns the four lifecycle stages in fixed dashboard order.
func Statuses() [4]Status {
	return [4]Status{StatusOutstanding, StatusPending, StatusReceived, StatusSpent}
}

func (s Status) Valid() bool {
	switch s {
	case StatusOutstanding, StatusPending, StatusReceived, StatusSpent:
		return true
	default:
		return false
	}
}

// ParseStatus validates a raw status string from an edit form or a legacy
// record. Unrecognized values are rejected rather than coerced.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (f Funder) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if e.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	if e.Amount.Paise > MaxAmount {
		return ErrAmountTooLarge
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrMissingCategory
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if len(StripHTML(e.Notes)) > MaxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

// StripHTML removes anything between angle brackets. Notes are plain text;
// markup pasted from elsewhere is discarded rather than rejected.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
