package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

var errUpstream = errors.New("connection reset")

func testConfig() Config {
	cfg := DefaultConfig("clearinghouse")
	cfg.FailureThreshold = 2
	cfg.MinRequests = 100
	cfg.Timeout = time.Minute
	return cfg
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []State
	cfg := testConfig()
	cfg.OnStateChange = func(name string, from, to State) {
		if name != "clearinghouse" {
			t.Errorf("transition reported for %q", name)
		}
		transitions = append(transitions, to)
	}
	cb, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fail := func(ctx context.Context) ([]byte, error) { return nil, errUpstream }
	for i := 0; i < 2; i++ {
		if _, err := Call(context.Background(), cb, fail); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d error = %v", i, err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %s, want open", cb.GetState())
	}

	called := false
	_, err = Call(context.Background(), cb, func(ctx context.Context) ([]byte, error) {
		called = true
		return []byte("ok"), nil
	})
	if !IsOpen(err) {
		t.Errorf("error = %v, want open circuit", err)
	}
	if called {
		t.Error("function ran while the circuit was open")
	}
	if len(transitions) != 1 || transitions[0] != StateOpen {
		t.Errorf("transitions = %v", transitions)
	}
}

func TestCancellationDoesNotTrip(t *testing.T) {
	cb, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 5; i++ {
		_, err := Call(context.Background(), cb, func(ctx context.Context) (string, error) {
			return "", context.Canceled
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v", err)
		}
	}
	if !cb.IsClosed() {
		t.Errorf("state = %s, want closed", cb.GetState())
	}
}

func TestCustomIsSuccessful(t *testing.T) {
	errRejected := errors.New("functional rejection")
	cfg := testConfig()
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, errRejected) }
	cb, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		_, _ = Call(context.Background(), cb, func(ctx context.Context) (int, error) { return 0, errRejected })
	}
	if !cb.IsClosed() {
		t.Errorf("state = %s, want closed", cb.GetState())
	}
}

func TestCallReturnsValue(t *testing.T) {
	cb, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := Call(context.Background(), cb, func(ctx context.Context) ([]byte, error) {
		return []byte("<Envelope/>"), nil
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(got) != "<Envelope/>" {
		t.Errorf("got %q", got)
	}
	if c := cb.Counts(); c.TotalSuccesses != 1 {
		t.Errorf("successes = %d", c.TotalSuccesses)
	}
}

func TestManager(t *testing.T) {
	m := NewManager(nil)
	a, err := m.GetOrCreate("https://ch.example/core", DefaultConfig(""))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	b, err := m.GetOrCreate("https://ch.example/core", DefaultConfig(""))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if a != b {
		t.Error("manager created two breakers for one endpoint")
	}
	if a.Name() != "https://ch.example/core" {
		t.Errorf("name = %q", a.Name())
	}
	health := m.GetHealthStatus()
	if len(health) != 1 || !health[0].Healthy || health[0].State != StateClosed {
		t.Errorf("health = %+v", health)
	}
}

func TestStateValue(t *testing.T) {
	if StateClosed.Value() != 0 || StateOpen.Value() != 1 || StateHalfOpen.Value() != 2 {
		t.Error("unexpected gauge values")
	}
}
