package x12

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testSet() TransactionSet {
	return TransactionSet{
		Code:          "270",
		ControlNumber: "0001",
		Version:       GuideEligibility,
		Body: []Segment{
			NewSegment("BHT", "0022", "13", "TRACE1", "20240105", "1230"),
			NewSegment("HL", "1", "", "20", "1"),
			NewSegment("NM1", "PR", "2", "UTAH MEDICAID", "", "", "", "", "PI", "UTMCD"),
			NewSegment("EQ", "30"),
		},
	}
}

func testHeader() InterchangeHeader {
	return InterchangeHeader{
		SenderID:       "SENDER01",
		ReceiverID:     "OFFALLY",
		ControlNumber:  "123456789",
		UsageIndicator: UsageTest,
		Timestamp:      time.Date(2024, 1, 5, 12, 30, 0, 0, time.Local),
	}
}

func TestBuildInterchangeRoundTrip(t *testing.T) {
	raw, err := BuildInterchange(testHeader(), testSet())
	if err != nil {
		t.Fatalf("BuildInterchange failed: %v", err)
	}

	isa := SplitSegments(raw)[0]
	if len(isa)+1 != isaLength {
		t.Errorf("ISA length = %d, want %d", len(isa)+1, isaLength)
	}
	if !strings.Contains(isa, "*SENDER01       *") || !strings.Contains(isa, "*OFFALLY        *") {
		t.Errorf("ISA ids not padded to 15: %q", isa)
	}

	ic, err := ParseInterchange(raw)
	if err != nil {
		t.Fatalf("ParseInterchange failed: %v", err)
	}
	if ic.ControlNumber != "123456789" {
		t.Errorf("ISA13 = %q, want 123456789", ic.ControlNumber)
	}
	if ic.SenderID != "SENDER01" || ic.ReceiverID != "OFFALLY" {
		t.Errorf("ids = %q/%q", ic.SenderID, ic.ReceiverID)
	}
	if ic.Date != "240105" || ic.Time != "1230" || ic.UsageIndicator != UsageTest {
		t.Errorf("header = %+v", ic)
	}
	if len(ic.Groups) != 1 || ic.Groups[0].FunctionalID != "HS" || ic.Groups[0].Version != GuideEligibility {
		t.Fatalf("groups = %+v", ic.Groups)
	}
	txs := ic.Transactions()
	if len(txs) != 1 || txs[0].Code != "270" || txs[0].ControlNumber != "0001" {
		t.Fatalf("transactions = %+v", txs)
	}
	if !reflect.DeepEqual(txs[0].Segments, testSet().Body) {
		t.Errorf("body = %q, want %q", txs[0].Segments, testSet().Body)
	}

	segs := ParseSegments(raw)
	iea := segs[len(segs)-1]
	if iea.Element(2) != "123456789" {
		t.Errorf("IEA02 = %q", iea.Element(2))
	}
}

func TestBuildInterchangePadsShortControlNumber(t *testing.T) {
	h := testHeader()
	h.ControlNumber = "42"
	raw, err := BuildInterchange(h, testSet())
	if err != nil {
		t.Fatalf("BuildInterchange failed: %v", err)
	}
	ic, err := ParseInterchange(raw)
	if err != nil {
		t.Fatalf("ParseInterchange failed: %v", err)
	}
	if ic.ControlNumber != "000000042" {
		t.Errorf("ISA13 = %q", ic.ControlNumber)
	}
	if ic.Groups[0].ControlNumber != "42" {
		t.Errorf("GS06 = %q", ic.Groups[0].ControlNumber)
	}
}

func TestBuildInterchangeValidation(t *testing.T) {
	h := testHeader()
	h.SenderID = ""
	h.ControlNumber = "12AB"
	_, err := BuildInterchange(h)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var list ValidationErrors
	if !errors.As(err, &list) || len(list) != 3 {
		t.Errorf("expected 3 field errors, got %v", err)
	}
}

func TestTransactionSetCountsItsOwnSegments(t *testing.T) {
	ts := testSet()
	segs := ts.Segments()
	se := segs[len(segs)-1]
	if se.Element(1) != "6" || se.Element(2) != "0001" {
		t.Errorf("SE = %q", se)
	}
	ts.Body = append(ts.Body, NewSegment("REF", "6P", "G1"))
	segs = ts.Segments()
	if segs[len(segs)-1].Element(1) != "7" {
		t.Errorf("SE01 did not follow optional segment: %q", segs[len(segs)-1])
	}
}

func TestParseInterchangeRejectsMismatches(t *testing.T) {
	good, err := BuildInterchange(testHeader(), testSet())
	if err != nil {
		t.Fatalf("BuildInterchange failed: %v", err)
	}
	tests := []struct {
		name string
		from string
		to   string
	}{
		{"IEA02", "IEA*1*123456789~", "IEA*1*123456780~"},
		{"IEA01", "IEA*1*", "IEA*2*"},
		{"GE02", "GE*1*123456789~", "GE*1*99~"},
		{"GE01", "GE*1*", "GE*3*"},
		{"SE02", "SE*6*0001~", "SE*6*0002~"},
		{"SE01", "SE*6*0001~", "SE*5*0001~"},
		{"missing IEA", "IEA*1*123456789~", ""},
		{"stray segment", "GE*1*", "REF*X*Y~GE*1*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := strings.Replace(good, tt.from, tt.to, 1)
			if raw == good {
				t.Fatalf("replacement %q not applied", tt.from)
			}
			_, err := ParseInterchange(raw)
			if !errors.Is(err, ErrMalformedEnvelope) {
				t.Fatalf("expected malformed envelope, got %v", err)
			}
			var me *MalformedEnvelopeError
			if !errors.As(err, &me) || me.Reason == "" {
				t.Errorf("expected *MalformedEnvelopeError with a reason, got %v", err)
			}
		})
	}
}

func TestControlNumberFromClock(t *testing.T) {
	ts := time.UnixMilli(1704457800123)
	if got := ControlNumberFromClock(ts); got != "457800123" {
		t.Errorf("ControlNumberFromClock() = %q", got)
	}
	if got := ControlNumberFromClock(time.UnixMilli(42)); got != "000000042" {
		t.Errorf("ControlNumberFromClock() = %q, want zero padded", got)
	}
	src := ClockControlNumbers(func() time.Time { return ts })
	if src() != "457800123" {
		t.Error("ClockControlNumbers did not use the supplied clock")
	}
}
