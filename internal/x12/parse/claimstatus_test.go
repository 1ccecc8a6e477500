package parse

import (
	"errors"
	"testing"

	"github.com/drfirst/go-edi/internal/x12/codes"
)

func TestParse277TwoClaims(t *testing.T) {
	res, err := Parse277(readFixture(t, "277_two_claims.x12"))
	if err != nil {
		t.Fatalf("Parse277: %v", err)
	}

	if res.Payer == nil || res.Payer.ID != "60054" {
		t.Errorf("payer = %+v", res.Payer)
	}
	if res.Receiver == nil || res.Receiver.LastName != "DRFIRST" {
		t.Errorf("receiver = %+v", res.Receiver)
	}
	if res.Provider == nil || res.Provider.ID != "1234567893" {
		t.Errorf("provider = %+v", res.Provider)
	}
	if len(res.Claims) != 2 {
		t.Fatalf("claims = %d, want 2", len(res.Claims))
	}

	first, second := res.Claims[0], res.Claims[1]
	if first.TraceNumber != "CLAIM001" || second.TraceNumber != "CLAIM002" {
		t.Fatalf("traces = %q %q", first.TraceNumber, second.TraceNumber)
	}

	// each claim only carries what appeared between its TRN*1 and the next
	if len(first.Statuses) != 1 || first.Statuses[0].Category != "F1" {
		t.Errorf("first statuses = %+v", first.Statuses)
	}
	if len(first.References) != 1 || first.References[0].Value != "PAYERCLAIM01" {
		t.Errorf("first references = %+v", first.References)
	}
	if len(first.Dates) != 1 || first.Dates[0].From != "2024-01-02" || first.Dates[0].To != "2024-01-02" {
		t.Errorf("first dates = %+v", first.Dates)
	}
	if len(first.Amounts) != 1 || first.Amounts[0].Qualifier != "T3" || !first.Amounts[0].Amount.Equal(dec("150")) {
		t.Errorf("first amounts = %+v", first.Amounts)
	}
	if len(second.Statuses) != 2 || second.Statuses[0].Category != "A1" || second.Statuses[1].Category != "P1" {
		t.Errorf("second statuses = %+v", second.Statuses)
	}
	if len(second.Amounts) != 0 || len(second.Dates) != 0 || len(second.ServiceLines) != 0 {
		t.Errorf("second claim picked up segments from the first: %+v", second)
	}
	if len(second.References) != 1 || second.References[0].Qualifier != "D9" {
		t.Errorf("second references = %+v", second.References)
	}
	if second.ReferencedTrace != "000000779" {
		t.Errorf("referenced trace = %q", second.ReferencedTrace)
	}

	stc := first.Statuses[0]
	if stc.Status != "65" || stc.StatusLabel != codes.ClaimStatus.Label("65") {
		t.Errorf("status = %q %q", stc.Status, stc.StatusLabel)
	}
	if stc.CategoryLabel != codes.ClaimStatusCategory.Label("F1") {
		t.Errorf("category label = %q", stc.CategoryLabel)
	}
	if stc.EffectiveDate != "2024-01-10" || stc.AdjudicationDate != "2024-01-09" || stc.CheckNumber != "CHK1001" {
		t.Errorf("status dates = %+v", stc)
	}
	if stc.ChargeAmount == nil || !stc.ChargeAmount.Equal(dec("150")) || stc.PaymentAmount == nil || !stc.PaymentAmount.Equal(dec("120")) {
		t.Errorf("status amounts = %v %v", stc.ChargeAmount, stc.PaymentAmount)
	}
	if e := second.Statuses[0]; e.Entity != "PR" || e.EntityLabel != codes.EntityIdentifier.Label("PR") {
		t.Errorf("entity = %q %q", e.Entity, e.EntityLabel)
	}

	if len(first.ServiceLines) != 1 {
		t.Fatalf("service lines = %d, want 1", len(first.ServiceLines))
	}
	line := first.ServiceLines[0]
	if line.Procedure != "99213" || len(line.Modifiers) != 1 || line.Modifiers[0] != "25" {
		t.Errorf("line procedure = %q %v", line.Procedure, line.Modifiers)
	}
	if !line.ChargeAmount.Equal(dec("100")) || line.PaymentAmount == nil || !line.PaymentAmount.Equal(dec("80")) || line.Units != "1" {
		t.Errorf("line = %+v", line)
	}
	if len(line.Statuses) != 1 || len(line.Dates) != 1 {
		t.Errorf("line statuses = %d dates = %d", len(line.Statuses), len(line.Dates))
	}

	for i, c := range res.Claims {
		if c.Subscriber == nil || c.Subscriber.LastName != "DOE" {
			t.Errorf("claim %d subscriber = %+v", i, c.Subscriber)
		}
		if c.Patient == nil || c.Patient.FirstName != "JANE" {
			t.Errorf("claim %d patient = %+v (HL04 0 makes the subscriber the patient)", i, c.Patient)
		}
	}
	if first.Outcome != OutcomePaid || second.Outcome != OutcomePending {
		t.Errorf("outcomes = %s %s", first.Outcome, second.Outcome)
	}
	if res.NotFound() {
		t.Error("NotFound should be false")
	}
}

func TestParse277Dependent(t *testing.T) {
	raw := "HL*4*3*22*1~NM1*IL*1*DOE*JOHN****MI*W1~HL*5*4*23*0~DMG*D8*20150101*M~NM1*QC*1*DOE*JIMMY~TRN*1*T1~TRN*2*R1~STC*A2:20~"
	res, err := Parse277(raw)
	if err != nil {
		t.Fatalf("Parse277: %v", err)
	}
	if len(res.Claims) != 1 {
		t.Fatalf("claims = %d, want 1", len(res.Claims))
	}
	c := res.Claims[0]
	if c.Subscriber == nil || c.Subscriber.FirstName != "JOHN" {
		t.Errorf("subscriber = %+v", c.Subscriber)
	}
	if c.Patient == nil || c.Patient.FirstName != "JIMMY" {
		t.Errorf("patient = %+v", c.Patient)
	}
	if c.TraceNumber != "T1" || c.ReferencedTrace != "R1" || c.Outcome != OutcomeAcknowledged {
		t.Errorf("claim = %+v", c)
	}
}

func TestParse277ReferencedTracesStayOnClaim(t *testing.T) {
	res, err := Parse277("TRN*1*A~STC*A1:20~TRN*2*X~TRN*2*Y~STC*F1:65~TRN*1*B~STC*A2:20~")
	if err != nil {
		t.Fatalf("Parse277: %v", err)
	}
	if len(res.Claims) != 2 {
		t.Fatalf("claims = %d, want 2: %+v", len(res.Claims), res.Claims)
	}

	a, b := res.Claims[0], res.Claims[1]
	if a.TraceNumber != "A" || a.ReferencedTrace != "X" {
		t.Errorf("first claim traces = %q %q", a.TraceNumber, a.ReferencedTrace)
	}
	if len(a.OtherTraces) != 1 || a.OtherTraces[0] != "Y" {
		t.Errorf("other traces = %v", a.OtherTraces)
	}
	if len(a.Statuses) != 2 || a.Outcome != OutcomePaid {
		t.Errorf("first claim statuses = %+v outcome = %s", a.Statuses, a.Outcome)
	}
	if b.TraceNumber != "B" || b.ReferencedTrace != "" || len(b.Statuses) != 1 {
		t.Errorf("second claim = %+v", b)
	}
}

func TestParse277ReferencedTraceWithoutClaim(t *testing.T) {
	res, err := Parse277("ST*277*0001*005010X212~BHT*0010*08*000000777*20240105*1230*DG~TRN*2*000000777~SE*4*0001~")
	if err != nil {
		t.Fatalf("Parse277: %v", err)
	}
	if len(res.Claims) != 0 {
		t.Fatalf("claims = %+v, want none", res.Claims)
	}
	if len(res.ReferencedTraces) != 1 || res.ReferencedTraces[0] != "000000777" {
		t.Errorf("referenced traces = %v", res.ReferencedTraces)
	}
	if !res.NotFound() {
		t.Error("a response with only a referenced trace reports not found")
	}
}

func TestParse277LevelStatus(t *testing.T) {
	res, err := Parse277("HL*2*1*21*1~NM1*41*2*DRFIRST~STC*A3:24:41~")
	if err != nil {
		t.Fatalf("Parse277: %v", err)
	}
	if len(res.Claims) != 0 || len(res.Statuses) != 1 {
		t.Fatalf("claims = %d statuses = %d", len(res.Claims), len(res.Statuses))
	}
	if !res.NotFound() {
		t.Error("a response without claims reports not found")
	}
}

func TestParse277ServiceLineOutsideClaim(t *testing.T) {
	_, err := Parse277("HL*4*3*22*0~SVC*HC:99213*100~")
	if !errors.Is(err, ErrUnmatchedNesting) {
		t.Fatalf("error = %v, want ErrUnmatchedNesting", err)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       ClaimStatusOutcome
	}{
		{"paid wins regardless of order", []string{"A1", "P1", "F1"}, OutcomePaid},
		{"denied over pending", []string{"P0", "F2"}, OutcomeDenied},
		{"pending over acknowledged", []string{"A2", "P3"}, OutcomePending},
		{"extended pending code", []string{"P5"}, OutcomePending},
		{"acknowledged over rejected", []string{"A6", "A2"}, OutcomeAcknowledged},
		{"rejected over received", []string{"A1", "A7"}, OutcomeRejected},
		{"A3 is a rejection", []string{"A3"}, OutcomeRejected},
		{"received", []string{"A1"}, OutcomeReceived},
		{"unlisted category", []string{"E0"}, OutcomeUnknown},
		{"no statuses", nil, OutcomeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c ClaimStatus
			for _, cat := range tt.categories {
				c.Statuses = append(c.Statuses, StatusEntry{Category: cat})
			}
			if got := Summarize(c); got != tt.want {
				t.Errorf("Summarize = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"TRN*1*C1~STC*A4:35~", true},
		{"TRN*1*C1~STC*D0:33~STC*A4:35~", true},
		{"TRN*1*C1~STC*A4:35~TRN*1*C2~STC*F1:65~", false},
		{"TRN*1*C1~STC*A1:20~", false},
		{"", true},
	}
	for _, tt := range tests {
		res, err := Parse277(tt.raw)
		if err != nil {
			t.Fatalf("Parse277(%q): %v", tt.raw, err)
		}
		if got := res.NotFound(); got != tt.want {
			t.Errorf("NotFound(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
