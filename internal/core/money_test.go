package core

import "testing"

func TestParseDecimalToPaise(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12", 1200, true},
		{"12.3", 1230, true},
		{"12.344", 1234, true}, // third digit < 5 rounds down
		{"12.345", 1235, true}, // third digit >= 5 rounds up
		{"12.346", 1235, true},
		{".50", 50, true},
		{"0", 0, false},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
		{"12a", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseDecimalToPaise(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d (%q): got (%d, %v), want %d", i, tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q): expected error", i, tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		paise int64
		want  string
	}{
		{0, "Rs. 0"},
		{100, "Rs. 1"},
		{150, "Rs. 1.50"},
		{105, "Rs. 1.05"},
		{123_456_700, "Rs. 1,234,567"},
		{123_456_789, "Rs. 1,234,567.89"},
		{MaxAmount, "Rs. 10,000,000"},
		{-2500, "-Rs. 25"},
	}
	for i, tc := range cases {
		if got := (Money{Paise: tc.paise}).String(); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

func TestMoneyRupees(t *testing.T) {
	if got := (Money{Paise: 1234}).Rupees(); got != 12.34 {
		t.Fatalf("got %v, want 12.34", got)
	}
}
