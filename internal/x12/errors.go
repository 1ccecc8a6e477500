package x12

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks
var (
	ErrValidation        = errors.New("x12: validation failed")
	ErrMalformedEnvelope = errors.New("x12: malformed envelope")
)

// ValidationError represents a pre-flight validation failure with field context.
// No wire bytes are produced when a generator returns one.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors collects every missing or malformed field of one request
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, ErrValidation) match a ValidationErrors list
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Err returns nil for an empty list so callers can return it directly
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Add appends a field error
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, &ValidationError{Field: field, Message: message})
}

// MalformedEnvelopeError reports a control number or count mismatch in an
// interchange. It is always surfaced, never repaired.
type MalformedEnvelopeError struct {
	Reason  string
	Segment string
}

func (e *MalformedEnvelopeError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("malformed envelope: %s (at %s)", e.Reason, e.Segment)
	}
	return "malformed envelope: " + e.Reason
}

// Is lets errors.Is(err, ErrMalformedEnvelope) match any MalformedEnvelopeError
func (e *MalformedEnvelopeError) Is(target error) bool {
	return target == ErrMalformedEnvelope
}

func malformed(seg Segment, format string, args ...interface{}) error {
	e := &MalformedEnvelopeError{Reason: fmt.Sprintf(format, args...)}
	if seg != nil {
		e.Segment = seg.String()
	}
	return e
}
