package core

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"Outstanding", StatusOutstanding, true},
		{"Pending", StatusPending, true},
		{"Received", StatusReceived, true},
		{"Spent", StatusSpent, true},
		{" Spent ", StatusSpent, true},
		{"Done", "", false}, // legacy vocabulary is not accepted
		{"Took Over", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got (%q, %v), want %q", i, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error for %q", i, tc.in)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Title:      "Sound system",
		Amount:     Money{Paise: 50_000_00},
		CategoryID: "cat-1",
		Status:     StatusOutstanding,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e    Expense
		want error
	}{
		{Expense{Title: "  ", Amount: Money{Paise: 1}, CategoryID: "c", Status: StatusPending}, ErrEmptyTitle},
		{Expense{Title: "a", Amount: Money{Paise: 0}, CategoryID: "c", Status: StatusPending}, ErrInvalidAmount},
		{Expense{Title: "a", Amount: Money{Paise: MaxAmount + 1}, CategoryID: "c", Status: StatusPending}, ErrAmountTooLarge},
		{Expense{Title: "a", Amount: Money{Paise: 1}, CategoryID: "", Status: StatusPending}, ErrMissingCategory},
		{Expense{Title: "a", Amount: Money{Paise: 1}, CategoryID: "c", Status: "Done"}, ErrInvalidStatus},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}

	// Amount exactly at the ceiling is allowed.
	good.Amount = Money{Paise: MaxAmount}
	if err := good.Validate(); err != nil {
		t.Fatalf("ceiling amount should validate, got %v", err)
	}
}

func TestExpenseValidateNotes(t *testing.T) {
	e := Expense{
		Title:      "a",
		Amount:     Money{Paise: 1},
		CategoryID: "c",
		Status:     StatusPending,
	}
	for i := 0; i < MaxNotesLen; i++ {
		e.Notes += "x"
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("notes at limit should validate, got %v", err)
	}
	e.Notes += "x"
	if err := e.Validate(); !errors.Is(err, ErrNotesTooLong) {
		t.Fatalf("got %v, want ErrNotesTooLong", err)
	}

	// Markup does not count toward the limit.
	e.Notes = "<div><b>" + e.Notes[:MaxNotesLen] + "</b></div>"
	if err := e.Validate(); err != nil {
		t.Fatalf("stripped notes at limit should validate, got %v", err)
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"<b>bold</b>", "bold"},
		{"a <script>evil()</script> b", "a evil() b"},
		{"<br>", ""},
	}
	for i, tc := range cases {
		if got := StripHTML(tc.in); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

func TestCategoryFunderValidate(t *testing.T) {
	if err := (Category{Name: "Food"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: " "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatal("expected ErrEmptyName")
	}
	if err := (Funder{Name: "Acme"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Funder{}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatal("expected ErrEmptyName")
	}
}
