package clearinghouse

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotReady is returned by a Mailbox when the requested file has not arrived
var ErrNotReady = errors.New("clearinghouse: response not ready")

// ErrPollExhausted is returned when every poll attempt found nothing
var ErrPollExhausted = errors.New("clearinghouse: poll attempts exhausted")

// Mailbox is an asynchronous file drop, such as a clearinghouse SFTP outbox
type Mailbox interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirMailbox reads response files from a local directory, typically a synced
// or mounted clearinghouse outbox
type DirMailbox struct {
	Root string
}

// Fetch reads name from the directory. A missing file is ErrNotReady.
func (d DirMailbox) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid mailbox file name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(d.Root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("read mailbox file: %w", err)
	}
	return data, nil
}

// Poller fetches from a Mailbox a bounded number of times
type Poller struct {
	Attempts int
	Interval time.Duration
	Logger   *zap.Logger
}

// DefaultPoller matches the usual clearinghouse batch turnaround
func DefaultPoller() Poller {
	return Poller{Attempts: 10, Interval: 30 * time.Second}
}

// Poll fetches name until it arrives, attempts run out, or ctx ends. Errors
// other than ErrNotReady stop polling immediately.
func (p Poller) Poll(ctx context.Context, mb Mailbox, name string) ([]byte, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := mb.Fetch(ctx, name)
		if err == nil {
			logger.Debug("mailbox file retrieved",
				zap.String("file", name),
				zap.Int("attempt", attempt))
			return data, nil
		}
		if !errors.Is(err, ErrNotReady) {
			return nil, err
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(p.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrPollExhausted, name, attempts)
}
