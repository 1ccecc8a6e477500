package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/drfirst/go-edi/internal/infrastructure/redpanda"
	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/generate"
	"github.com/drfirst/go-edi/pkg/idempotency"
	"github.com/drfirst/go-edi/pkg/workerpool"
)

type fakeInbox struct {
	mu   sync.Mutex
	err  error
	dup  bool
	keys []string
}

func (f *fakeInbox) Process(ctx context.Context, key, handlerName string, payload json.RawMessage, fn idempotency.ProcessFunc) (*idempotency.ProcessResult, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.dup {
		return &idempotency.ProcessResult{Result: json.RawMessage(`{}`)}, nil
	}
	out, err := fn(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &idempotency.ProcessResult{IsNew: true, Result: out}, nil
}

type step struct {
	out *inquiry.Outcome
	err error
}

type fakeRunner struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (f *fakeRunner) Run(ctx context.Context, r inquiry.Request) (any, *inquiry.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.steps[min(f.calls, len(f.steps)-1)]
	f.calls++
	if s.err != nil {
		return nil, nil, s.err
	}
	return &inquiry.EligibilityResult{Outcome: *s.out, PayerID: r.PayerID}, s.out, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type published struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	sent []published
}

func (f *fakePublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{topic, key, value})
	return nil
}

func (f *fakePublisher) letters(t *testing.T) []DeadLetter {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []DeadLetter
	for _, p := range f.sent {
		if p.topic != redpanda.TopicDeadLetter {
			t.Errorf("published to %s", p.topic)
		}
		var dl DeadLetter
		if err := json.Unmarshal(p.value, &dl); err != nil {
			t.Fatalf("decode dead letter: %v", err)
		}
		out = append(out, dl)
	}
	return out
}

var (
	success   = &inquiry.Outcome{Success: true, Kind: inquiry.KindNone}
	transport = &inquiry.Outcome{Kind: inquiry.KindTransportFault, Message: "503 from clearinghouse"}
	rejected  = &inquiry.Outcome{Kind: inquiry.KindFunctionalRejection}
)

func newTestHandler(t *testing.T, inbox Inbox, runner Runner, dlq Publisher) *Handler {
	t.Helper()
	cfg := workerpool.Config{Workers: 2, QueueSize: 4, MaxRetries: 2, RetryDelay: time.Millisecond}
	h, err := New(inbox, runner, dlq, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.now = func() time.Time { return time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = h.Stop() })
	return h
}

func eligibilityMessage(t *testing.T) *redpanda.ConsumedMessage {
	t.Helper()
	req := inquiry.Request{
		ID:        "req-1",
		Operation: inquiry.OpEligibility,
		PayerID:   "60054",
		Patient:   &generate.Patient{FirstName: "JANE", LastName: "DOE", DateOfBirth: "1980-01-01"},
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &redpanda.ConsumedMessage{
		Topic:     redpanda.TopicEligibilityRequests,
		Partition: 1,
		Offset:    42,
		Key:       []byte("req-1"),
		Value:     data,
		Timestamp: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(nil, &fakeRunner{}, &fakePublisher{}, workerpool.DefaultConfig(), nil); err == nil {
		t.Fatal("expected error without inbox")
	}
}

func TestHandleOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		steps      []step
		wantCalls  int
		wantReason string
	}{
		{"success", []step{{out: success}}, 1, ""},
		{"transient then success", []step{{out: transport}, {out: success}}, 2, ""},
		{"rejection is a result", []step{{out: rejected}}, 1, ""},
		{"transient exhausted", []step{{out: transport}}, 3, "exhausted"},
		{"network error exhausted", []step{{err: errors.New("connection reset")}}, 3, "exhausted"},
		{"validation is permanent", []step{{err: &x12.ValidationError{Field: "dob", Message: "bad"}}}, 1, "permanent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{steps: tt.steps}
			dlq := &fakePublisher{}
			h := newTestHandler(t, &fakeInbox{}, runner, dlq)

			if err := h.Handle(context.Background(), eligibilityMessage(t)); err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if got := runner.count(); got != tt.wantCalls {
				t.Errorf("runs = %d, want %d", got, tt.wantCalls)
			}

			letters := dlq.letters(t)
			if tt.wantReason == "" {
				if len(letters) != 0 {
					t.Errorf("unexpected dead letters: %+v", letters)
				}
				return
			}
			if len(letters) != 1 {
				t.Fatalf("dead letters = %d, want 1", len(letters))
			}
			dl := letters[0]
			if dl.Reason != tt.wantReason || dl.Offset != 42 || dl.Topic != redpanda.TopicEligibilityRequests {
				t.Errorf("dead letter = %+v", dl)
			}
			if len(dl.Payload) == 0 {
				t.Error("dead letter should carry the original request")
			}
		})
	}
}

func TestHandleRejectsBadMessages(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantReason string
	}{
		{"undecodable", `{"id":`, "undecodable"},
		{"missing patient", `{"id":"r1","operation":"eligibility","payerId":"60054"}`, "invalid"},
		{"unsupported operation", `{"id":"r1","operation":"remittance"}`, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{steps: []step{{out: success}}}
			inbox := &fakeInbox{}
			dlq := &fakePublisher{}
			h := newTestHandler(t, inbox, runner, dlq)

			msg := &redpanda.ConsumedMessage{Topic: redpanda.TopicEligibilityRequests, Value: []byte(tt.value)}
			if err := h.Handle(context.Background(), msg); err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if runner.count() != 0 || len(inbox.keys) != 0 {
				t.Error("bad messages must not reach the inbox or the clearinghouse")
			}
			letters := dlq.letters(t)
			if len(letters) != 1 || letters[0].Reason != tt.wantReason {
				t.Fatalf("dead letters = %+v", letters)
			}
			if tt.wantReason == "undecodable" && len(letters[0].Payload) != 0 {
				t.Error("invalid JSON must not be embedded")
			}
		})
	}
}

func TestHandleUsesIdempotencyKey(t *testing.T) {
	inbox := &fakeInbox{}
	h := newTestHandler(t, inbox, &fakeRunner{steps: []step{{out: success}}}, &fakePublisher{})

	msg := eligibilityMessage(t)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	want := idempotency.InquiryKey(inquiry.OpEligibility, "60054", "DOE", "JANE", "1980-01-01", msg.Timestamp)
	if len(inbox.keys) != 1 || inbox.keys[0] != want {
		t.Errorf("keys = %v, want [%s]", inbox.keys, want)
	}
}

func TestHandleDuplicateSkipsRun(t *testing.T) {
	runner := &fakeRunner{steps: []step{{out: success}}}
	h := newTestHandler(t, &fakeInbox{dup: true}, runner, &fakePublisher{})

	if err := h.Handle(context.Background(), eligibilityMessage(t)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if runner.count() != 0 {
		t.Error("duplicate should not run again")
	}
}

func TestHandleInboxStates(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"in progress is redelivered", idempotency.ErrMessageInProgress, true},
		{"database down is redelivered", errors.New("failed to check inbox: timeout"), true},
		{"previously failed is settled", idempotency.ErrPreviouslyFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dlq := &fakePublisher{}
			h := newTestHandler(t, &fakeInbox{err: tt.err}, &fakeRunner{steps: []step{{out: success}}}, dlq)

			err := h.Handle(context.Background(), eligibilityMessage(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Handle() = %v, wantErr %v", err, tt.wantErr)
			}
			if len(dlq.letters(t)) != 0 {
				t.Error("inbox states must not dead-letter")
			}
		})
	}
}

func TestHandleDeadLetterFailureRedelivers(t *testing.T) {
	dlq := &fakePublisher{err: errors.New("broker unavailable")}
	h := newTestHandler(t, &fakeInbox{}, &fakeRunner{steps: []step{{out: success}}}, dlq)

	err := h.Handle(context.Background(), &redpanda.ConsumedMessage{Value: []byte("not json")})
	if err == nil || !strings.Contains(err.Error(), "dead letter") {
		t.Fatalf("Handle() = %v", err)
	}
}

func TestRetryable(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	if !retryable(context.Background(), errors.New("dial tcp: connection refused")) {
		t.Error("network errors should be retryable")
	}
	if retryable(cancelled, errors.New("dial tcp: connection refused")) {
		t.Error("cancelled runs should not be retried")
	}
	if retryable(context.Background(), &x12.ValidationError{Field: "npi", Message: "bad"}) {
		t.Error("validation errors should not be retried")
	}
}
