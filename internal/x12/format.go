package x12

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date layouts used on the wire
const (
	LayoutD8         = "20060102"
	LayoutISADate    = "060102"
	LayoutTime       = "1504"
	LayoutISODate    = "2006-01-02"
	DateQualifierD8  = "D8"
	DateQualifierRD8 = "RD8"
)

// FormatD8 renders a CCYYMMDD date
func FormatD8(t time.Time) string {
	return t.Format(LayoutD8)
}

// FormatRD8 renders a CCYYMMDD-CCYYMMDD range
func FormatRD8(from, to time.Time) string {
	return from.Format(LayoutD8) + "-" + to.Format(LayoutD8)
}

// ParseISODate parses a YYYY-MM-DD date as supplied by callers
func ParseISODate(field, value string) (time.Time, error) {
	t, err := time.Parse(LayoutISODate, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: "must be an ISO date (YYYY-MM-DD)"}
	}
	return t, nil
}

// ParseD8 parses a CCYYMMDD date; ok is false for anything else
func ParseD8(value string) (time.Time, bool) {
	t, err := time.Parse(LayoutD8, value)
	return t, err == nil
}

// FormatAmount renders a monetary amount with exactly two decimals and no separators
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseAmount parses a monetary element; ok is false when it is absent or not numeric
func ParseAmount(value string) (decimal.Decimal, bool) {
	if value == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

var delimiterStripper = strings.NewReplacer(
	SegmentTerminator, "",
	ElementSeparator, "",
	CompositeSeparator, "",
	ComponentSeparator, "",
	"\r", "",
	"\n", "",
)

// CleanText strips delimiter characters and collapses whitespace
func CleanText(s string) string {
	return strings.Join(strings.Fields(delimiterStripper.Replace(s)), " ")
}

// CleanName upper-cases a name element and strips delimiter characters
func CleanName(s string) string {
	return strings.ToUpper(CleanText(s))
}

// PadRight pads s with spaces to exactly n characters, truncating longer input
func PadRight(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}
