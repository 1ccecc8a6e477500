package x12

import (
	"fmt"
	"strings"
	"time"
)

// ControlNumberSource hands out interchange control numbers.
// Callers that need global uniqueness supply their own.
type ControlNumberSource func() string

// ControlNumberFromClock returns the last 9 digits of t's Unix millisecond clock
func ControlNumberFromClock(t time.Time) string {
	ms := t.UnixMilli() % 1_000_000_000
	if ms < 0 {
		ms = -ms
	}
	return fmt.Sprintf("%09d", ms)
}

// ClockControlNumbers derives control numbers from now, or time.Now when nil
func ClockControlNumbers(now func() time.Time) ControlNumberSource {
	if now == nil {
		now = time.Now
	}
	return func() string {
		return ControlNumberFromClock(now())
	}
}

// NormalizeControlNumber left-pads a numeric control number to width digits
func NormalizeControlNumber(s string, width int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "controlNumber", Message: "required"}
	}
	if len(s) > width {
		return "", &ValidationError{Field: "controlNumber", Message: fmt.Sprintf("exceeds %d digits", width)}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", &ValidationError{Field: "controlNumber", Message: "must be numeric"}
		}
	}
	return strings.Repeat("0", width-len(s)) + s, nil
}
