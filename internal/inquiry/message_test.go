package inquiry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/drfirst/go-edi/internal/x12"
)

func TestRequestValidate(t *testing.T) {
	p := commercialPatient()
	inq := claimInquiry()
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"eligibility", Request{ID: "r1", Operation: OpEligibility, PayerID: "60054", Patient: &p}, false},
		{"claim status", Request{ID: "r2", Operation: OpClaimStatus, ClaimInquiry: &inq}, false},
		{"missing patient", Request{ID: "r3", Operation: OpEligibility, PayerID: "60054"}, true},
		{"missing inquiry", Request{ID: "r4", Operation: OpClaimStatus}, true},
		{"missing id", Request{Operation: OpEligibility, PayerID: "60054", Patient: &p}, true},
		{"unsupported", Request{ID: "r5", Operation: OpRemittance}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, x12.ErrValidation) {
				t.Errorf("error should match ErrValidation: %v", err)
			}
		})
	}
}

func TestRequestIdempotencyKey(t *testing.T) {
	p := commercialPatient()
	at := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	a := Request{ID: "a", Operation: OpEligibility, PayerID: "60054", Patient: &p, SubmittedAt: at}
	b := Request{ID: "b", Operation: OpEligibility, PayerID: "60054", Patient: &p, SubmittedAt: at.Add(3 * time.Hour)}
	if a.IdempotencyKey() != b.IdempotencyKey() {
		t.Error("same patient and payer on the same day should share a key")
	}

	inq := claimInquiry()
	c := Request{ID: "c", Operation: OpClaimStatus, ClaimInquiry: &inq, SubmittedAt: at}
	other := inq
	other.ClaimControlNumber = "CLAIM002"
	d := Request{ID: "d", Operation: OpClaimStatus, ClaimInquiry: &other, SubmittedAt: at}
	if c.IdempotencyKey() == d.IdempotencyKey() {
		t.Error("different claims should not share a key")
	}
}

func TestServiceRun(t *testing.T) {
	ch := &fakeClearinghouse{reply: coreResponse(fixture(t, "271_commercial.x12"))}
	svc := newTestService(t, ch)
	p := commercialPatient()

	res, out, err := svc.Run(context.Background(), Request{ID: "r1", Operation: OpEligibility, PayerID: "60054", Patient: &p})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.(*EligibilityResult); !ok {
		t.Fatalf("result type = %T", res)
	}
	if !out.Success {
		t.Errorf("outcome = %+v", out)
	}

	if _, _, err := svc.Run(context.Background(), Request{ID: "r2", Operation: OpClaimStatus}); !errors.Is(err, x12.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRecordEvent(t *testing.T) {
	rec := Record{
		Key:       "000000777",
		Operation: OpEligibility,
		PayerID:   "60054",
		Request:   "ISA*00*...",
		Response:  "ISA*00*...",
		Result:     &EligibilityResult{Outcome: Outcome{Success: true, Kind: KindNone}, PayerID: "60054"},
		Success:    true,
		Kind:       KindNone,
		RecordedAt: time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC),
	}

	ev, err := rec.Event()
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	if ev.Key != rec.Key || ev.Operation != OpEligibility || !ev.Success {
		t.Errorf("event = %+v", ev)
	}

	var decoded EligibilityResult
	if err := json.Unmarshal(ev.Result, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if decoded.PayerID != "60054" || !decoded.Success {
		t.Errorf("decoded = %+v", decoded)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["request"]; ok {
		t.Error("events must not carry raw X12")
	}
}
