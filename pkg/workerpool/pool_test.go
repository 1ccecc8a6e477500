package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newPool(t *testing.T, cfg Config, fn WorkerFunc) *Pool {
	t.Helper()
	p, err := New(cfg, fn, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Start()
	t.Cleanup(func() { _ = p.Stop() })
	return p
}

func TestSubmitWaitReturnsOwnResult(t *testing.T) {
	p := newPool(t, Config{Workers: 4, QueueSize: 16}, func(ctx context.Context, task *Task) *Result {
		return &Result{Success: true, Data: task.Payload.(int) * 2}
	})

	for i := 0; i < 10; i++ {
		res, err := p.SubmitWait(context.Background(), &Task{ID: "t", Payload: i})
		if err != nil {
			t.Fatalf("SubmitWait: %v", err)
		}
		if res.Data.(int) != i*2 || res.Attempts != 1 {
			t.Errorf("result %d = %+v", i, res)
		}
	}
}

func TestRetriesOnlyRetryableFailures(t *testing.T) {
	tests := []struct {
		name         string
		retryable    bool
		wantAttempts int32
	}{
		{"transient", true, 3},
		{"permanent", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			p := newPool(t, Config{Workers: 1, QueueSize: 1, MaxRetries: 2, RetryDelay: time.Millisecond}, func(ctx context.Context, task *Task) *Result {
				atomic.AddInt32(&calls, 1)
				return &Result{Retryable: tt.retryable, Error: errors.New("clearinghouse unavailable")}
			})

			res, err := p.SubmitWait(context.Background(), &Task{ID: tt.name})
			if err != nil {
				t.Fatalf("SubmitWait: %v", err)
			}
			if res.Success {
				t.Error("expected failure")
			}
			if got := atomic.LoadInt32(&calls); got != tt.wantAttempts {
				t.Errorf("calls = %d, want %d", got, tt.wantAttempts)
			}
			if res.Attempts != int(tt.wantAttempts) {
				t.Errorf("Attempts = %d", res.Attempts)
			}
		})
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	var calls int32
	p := newPool(t, Config{Workers: 1, QueueSize: 1, MaxRetries: 5, RetryDelay: time.Millisecond}, func(ctx context.Context, task *Task) *Result {
		if atomic.AddInt32(&calls, 1) < 2 {
			return &Result{Retryable: true, Error: errors.New("timeout")}
		}
		return &Result{Success: true}
	})

	res, err := p.SubmitWait(context.Background(), &Task{ID: "flaky"})
	if err != nil {
		t.Fatalf("SubmitWait: %v", err)
	}
	if !res.Success || res.Attempts != 2 {
		t.Errorf("result = %+v", res)
	}
	if got := p.Stats().TasksRetried; got != 1 {
		t.Errorf("TasksRetried = %d", got)
	}
}

func TestQueueFull(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	p := newPool(t, Config{Workers: 1, QueueSize: 1}, func(ctx context.Context, task *Task) *Result {
		started <- struct{}{}
		<-release
		return &Result{Success: true}
	})
	defer close(release)

	if err := p.Submit(&Task{ID: "running"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started
	if err := p.Submit(&Task{ID: "queued"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := p.Submit(&Task{ID: "overflow"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	p, err := New(Config{Workers: 1, QueueSize: 1}, func(ctx context.Context, task *Task) *Result {
		return &Result{Success: true}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Start()
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := p.Submit(&Task{ID: "late"}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestAsyncResults(t *testing.T) {
	p, err := New(Config{Workers: 2, QueueSize: 4}, func(ctx context.Context, task *Task) *Result {
		return &Result{Success: true}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Start()

	for _, id := range []string{"a", "b", "c"} {
		if err := p.Submit(&Task{ID: id}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	seen := map[string]bool{}
	for res := range p.Results() {
		seen[res.TaskID] = res.Success
	}
	if len(seen) != 3 {
		t.Errorf("results = %v", seen)
	}
}

func TestNewRequiresWorkerFunc(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
