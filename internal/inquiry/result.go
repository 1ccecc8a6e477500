package inquiry

import (
	"context"
	"time"

	"github.com/drfirst/go-edi/internal/x12/enrich"
	"github.com/drfirst/go-edi/internal/x12/parse"
)

// Outcome is the part every result shares. Success is false only when the
// payer's answer could not be obtained; a 271 without coverage is a success.
type Outcome struct {
	Success          bool             `json:"success"`
	Kind             Kind             `json:"kind"`
	Message          string           `json:"message,omitempty"`
	ControlNumber    string           `json:"controlNumber,omitempty"`
	FaultCode        string           `json:"faultCode,omitempty"`
	ValidationErrors []string         `json:"validationErrors,omitempty"`
	Acknowledgments  []parse.AckEntry `json:"acknowledgments,omitempty"`
	Elapsed          time.Duration    `json:"elapsed"`
}

// EligibilityResult answers a 270
type EligibilityResult struct {
	Outcome
	PayerID      string             `json:"payerId"`
	Eligibility  *parse.Eligibility `json:"eligibility,omitempty"`
	Summary      *parse.Summary     `json:"summary,omitempty"`
	Plans        []enrich.PlanLabel `json:"plans,omitempty"`
	PlanConflict bool               `json:"planConflict,omitempty"`
}

// ClaimStatusResult answers a 276
type ClaimStatusResult struct {
	Outcome
	PayerID  string                     `json:"payerId"`
	Response *parse.ClaimStatusResponse `json:"response,omitempty"`
}

// SubmissionResult answers an 837P. Accepted is true when the acknowledgment
// carries no rejection.
type SubmissionResult struct {
	Outcome
	PatientControlNumber string                     `json:"patientControlNumber"`
	Accepted             bool                       `json:"accepted"`
	ClaimAcknowledgment  *parse.ClaimStatusResponse `json:"claimAcknowledgment,omitempty"`
}

// RemittanceResult carries a retrieved 835
type RemittanceResult struct {
	Outcome
	File       string            `json:"file"`
	Remittance *parse.Remittance `json:"remittance,omitempty"`
}

// Record is one completed exchange as written to a ResultSink. Request and
// Response hold X12 and may contain PHI.
type Record struct {
	Key        string    `json:"key"`
	Operation  string    `json:"operation"`
	PayerID    string    `json:"payerId,omitempty"`
	Request    string    `json:"request,omitempty"`
	Response   string    `json:"response,omitempty"`
	Result     any       `json:"result"`
	Success    bool      `json:"success"`
	Kind       Kind      `json:"kind"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ResultSink persists exchanges. Sink failures are logged and never change
// the result returned to the caller.
type ResultSink interface {
	Record(ctx context.Context, rec Record) error
}

// SinkFunc adapts a function to ResultSink
type SinkFunc func(ctx context.Context, rec Record) error

// Record calls f
func (f SinkFunc) Record(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}
