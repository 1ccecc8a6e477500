package postgres

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/drfirst/go-edi/internal/inquiry"
)

func TestPrepareSplitsRecord(t *testing.T) {
	rec := inquiry.Record{
		Key:        "000000777",
		Operation:  inquiry.OpEligibility,
		PayerID:    "UTMCD",
		Request:    "ISA*00*          *00*...~",
		Response:   "ISA*00*          *00*...~",
		Result:     map[string]any{"success": true},
		Success:    true,
		Kind:       inquiry.KindNone,
		RecordedAt: time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC),
	}

	row, entry, err := prepare(rec, "edi.results")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if row.ControlNumber != "000000777" || row.Request != rec.Request || row.Kind != "none" {
		t.Errorf("row = %+v", row)
	}
	if string(row.Result) != `{"success":true}` {
		t.Errorf("row.Result = %s", row.Result)
	}

	if entry.KafkaTopic != "edi.results" || entry.KafkaKey != "000000777" || entry.AggregateType != AggregateInquiry {
		t.Errorf("entry = %+v", entry)
	}
	if entry.EventType != "eligibility.completed" {
		t.Errorf("EventType = %q", entry.EventType)
	}
	if strings.Contains(string(entry.Payload), "ISA*") {
		t.Error("outbox payload must not carry raw X12")
	}

	var ev inquiry.Event
	if err := json.Unmarshal(entry.Payload, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Key != "000000777" || ev.PayerID != "UTMCD" || !ev.Success {
		t.Errorf("event = %+v", ev)
	}
}

func TestPrepareRequiresKey(t *testing.T) {
	if _, _, err := prepare(inquiry.Record{Operation: inquiry.OpEligibility}, "edi.results"); err == nil {
		t.Fatal("expected error for record without control number")
	}
}

func TestDeadLetterPayload(t *testing.T) {
	lastErr := "broker unavailable"
	entry := &OutboxEntry{
		ID:          7,
		AggregateID: "000000777",
		EventType:   "eligibility.completed",
		Payload:     json.RawMessage(`{"key":"000000777"}`),
		KafkaTopic:  "edi.results",
		RetryCount:  5,
		LastError:   &lastErr,
		CreatedAt:   time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC),
	}

	data, err := deadLetterPayload(entry)
	if err != nil {
		t.Fatalf("deadLetterPayload: %v", err)
	}
	var dl DeadLetter
	if err := json.Unmarshal(data, &dl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dl.OriginalTopic != "edi.results" || dl.LastError != lastErr || dl.RetryCount != 5 {
		t.Errorf("dead letter = %+v", dl)
	}
	if string(dl.Payload) != `{"key":"000000777"}` {
		t.Errorf("payload = %s", dl.Payload)
	}
}

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"transaction_log", "outbox", "inbox"} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema missing %s", table)
		}
	}
}
