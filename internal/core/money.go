// Package core holds the BudgetFlow domain model and the aggregation
// engine that derives dashboard figures from it.
//
// This file contains money parsing and formatting. Amounts are stored as
// integer paise to keep arithmetic exact; rupee floats exist only for
// display.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in paise (1/100 rupee).
type Money struct {
	Paise int64
}

// ParseDecimalToPaise converts a decimal rupee string to paise with
// half-up rounding on the third decimal place. Both dot (12.34) and comma
// (12,34) separators are accepted. Returns ErrInvalidAmount for malformed,
// negative, or zero input.
//
// Examples:
//
//	ParseDecimalToPaise("12.34")  -> 1234, nil
//	ParseDecimalToPaise("12,34")  -> 1234, nil
//	ParseDecimalToPaise("12.344") -> 1234, nil (rounds down)
//	ParseDecimalToPaise("12.345") -> 1235, nil (rounds up)
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up rounding on the third
	var fracPaise int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracPaise = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracPaise += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	paise := iv*100 + fracPaise
	if paise <= 0 {
		return 0, ErrInvalidAmount
	}
	return paise, nil
}

// Rupees returns the rupee value as a float64 for display purposes.
// Use paise for calculations to avoid floating-point precision issues.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// String renders the amount as "Rs. 1,234,567.89". Whole-rupee amounts
// omit the decimal part, matching how the report has always shown them.
func (m Money) String() string {
	paise := m.Paise
	neg := paise < 0
	if neg {
		paise = -paise
	}
	rupees := paise / 100
	rem := paise % 100

	s := groupThousands(strconv.FormatInt(rupees, 10))
	if rem != 0 {
		s += "." + twoDigits(rem)
	}
	if neg {
		return "-Rs. " + s
	}
	return "Rs. " + s
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(n + n/3)
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func twoDigits(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
