package clearinghouse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeMailbox struct {
	readyAfter int
	calls      int
	err        error
}

func (f *fakeMailbox) Fetch(ctx context.Context, name string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls < f.readyAfter {
		return nil, ErrNotReady
	}
	return []byte("ST*835*0001~"), nil
}

func TestPollRetrievesWhenReady(t *testing.T) {
	mb := &fakeMailbox{readyAfter: 3}
	data, err := Poller{Attempts: 5, Interval: time.Millisecond}.Poll(context.Background(), mb, "remit.835")
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if string(data) != "ST*835*0001~" || mb.calls != 3 {
		t.Errorf("data = %q after %d calls", data, mb.calls)
	}
}

func TestPollExhausts(t *testing.T) {
	mb := &fakeMailbox{readyAfter: 100}
	_, err := Poller{Attempts: 3, Interval: time.Millisecond}.Poll(context.Background(), mb, "remit.835")
	if !errors.Is(err, ErrPollExhausted) {
		t.Fatalf("error = %v, want ErrPollExhausted", err)
	}
	if mb.calls != 3 {
		t.Errorf("calls = %d, want 3", mb.calls)
	}
}

func TestPollStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mb := &fakeMailbox{readyAfter: 100}
	go cancel()
	_, err := Poller{Attempts: 1000, Interval: time.Hour}.Poll(ctx, mb, "remit.835")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestPollStopsOnHardError(t *testing.T) {
	boom := errors.New("permission denied")
	mb := &fakeMailbox{err: boom}
	_, err := Poller{Attempts: 5, Interval: time.Millisecond}.Poll(context.Background(), mb, "remit.835")
	if !errors.Is(err, boom) || mb.calls != 1 {
		t.Fatalf("error = %v after %d calls", err, mb.calls)
	}
}

func TestDirMailbox(t *testing.T) {
	dir := t.TempDir()
	mb := DirMailbox{Root: dir}

	if _, err := mb.Fetch(context.Background(), "remit.835"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("missing file error = %v, want ErrNotReady", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "remit.835"), []byte("ST*835*0001~"), 0o600); err != nil {
		t.Fatal(err)
	}
	data, err := mb.Fetch(context.Background(), "remit.835")
	if err != nil || string(data) != "ST*835*0001~" {
		t.Fatalf("Fetch = %q, %v", data, err)
	}
	for _, bad := range []string{"", "..", "../etc/passwd", `a\b`} {
		if _, err := mb.Fetch(context.Background(), bad); err == nil || errors.Is(err, ErrNotReady) {
			t.Errorf("Fetch(%q) error = %v, want invalid name", bad, err)
		}
	}
}
