package inquiry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/generate"
	"github.com/drfirst/go-edi/pkg/idempotency"
)

// Request is an inquiry queued for asynchronous processing
type Request struct {
	ID           string                 `json:"id"`
	Operation    string                 `json:"operation"`
	PayerID      string                 `json:"payerId,omitempty"`
	Patient      *generate.Patient      `json:"patient,omitempty"`
	ClaimInquiry *generate.ClaimInquiry `json:"claimInquiry,omitempty"`
	SubmittedAt  time.Time              `json:"submittedAt"`
}

// Validate checks the request carries what its operation needs
func (r Request) Validate() error {
	var errs x12.ValidationErrors
	if r.ID == "" {
		errs.Add("id", "required")
	}
	switch r.Operation {
	case OpEligibility:
		if r.PayerID == "" {
			errs.Add("payerId", "required")
		}
		if r.Patient == nil {
			errs.Add("patient", "required")
		}
	case OpClaimStatus:
		if r.ClaimInquiry == nil {
			errs.Add("claimInquiry", "required")
		}
	default:
		errs.Add("operation", fmt.Sprintf("unsupported operation %q", r.Operation))
	}
	return errs.Err()
}

// IdempotencyKey identifies the inquiry for replay suppression. It is stable
// for the same patient, payer and operation within one day.
func (r Request) IdempotencyKey() string {
	switch {
	case r.Patient != nil:
		return idempotency.InquiryKey(r.Operation, r.PayerID, r.Patient.LastName, r.Patient.FirstName, r.Patient.DateOfBirth, r.SubmittedAt)
	case r.ClaimInquiry != nil:
		c := r.ClaimInquiry
		return idempotency.InquiryKey(r.Operation+"|"+c.ClaimControlNumber, c.PayerID, c.PatientLastName, c.PatientFirstName, c.PatientDateOfBirth, r.SubmittedAt)
	}
	return idempotency.InquiryKey(r.Operation, r.PayerID, "", "", "", r.SubmittedAt)
}

// Run dispatches the request to the matching service call. The returned
// outcome is nil only when err is not.
func (s *Service) Run(ctx context.Context, r Request) (any, *Outcome, error) {
	if err := r.Validate(); err != nil {
		return nil, nil, err
	}
	switch r.Operation {
	case OpEligibility:
		res, err := s.CheckEligibility(ctx, *r.Patient, r.PayerID)
		if err != nil {
			return nil, nil, err
		}
		return res, &res.Outcome, nil
	default:
		res, err := s.CheckClaimStatus(ctx, *r.ClaimInquiry)
		if err != nil {
			return nil, nil, err
		}
		return res, &res.Outcome, nil
	}
}

// Event announces a completed exchange. It carries the decoded result but
// never the raw X12.
type Event struct {
	Key        string          `json:"key"`
	Operation  string          `json:"operation"`
	PayerID    string          `json:"payerId,omitempty"`
	Success    bool            `json:"success"`
	Kind       Kind            `json:"kind"`
	Result     json.RawMessage `json:"result,omitempty"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// Event converts the record for publication
func (r Record) Event() (Event, error) {
	ev := Event{
		Key:        r.Key,
		Operation:  r.Operation,
		PayerID:    r.PayerID,
		Success:    r.Success,
		Kind:       r.Kind,
		RecordedAt: r.RecordedAt,
	}
	if r.Result != nil {
		data, err := json.Marshal(r.Result)
		if err != nil {
			return Event{}, fmt.Errorf("failed to encode result: %w", err)
		}
		ev.Result = data
	}
	return ev, nil
}
