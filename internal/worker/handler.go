// Package worker consumes queued inquiries, runs each one at most once per
// idempotency key and dead-letters what cannot be completed.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/infrastructure/redpanda"
	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/pkg/idempotency"
	"github.com/drfirst/go-edi/pkg/workerpool"
)

// Inbox deduplicates processing by key
type Inbox interface {
	Process(ctx context.Context, key, handlerName string, payload json.RawMessage, fn idempotency.ProcessFunc) (*idempotency.ProcessResult, error)
}

// Runner executes one inquiry
type Runner interface {
	Run(ctx context.Context, r inquiry.Request) (any, *inquiry.Outcome, error)
}

// Publisher sends dead letters
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// ErrRetriesExhausted marks an inquiry whose transient failures outlasted the
// pool's retries. The inbox keeps it recoverable.
var ErrRetriesExhausted = errors.New("worker: retries exhausted")

// DeadLetter is published for messages the worker gives up on
type DeadLetter struct {
	Topic     string          `json:"topic"`
	Partition int32           `json:"partition"`
	Offset    int64           `json:"offset"`
	Reason    string          `json:"reason"`
	Error     string          `json:"error"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	FailedAt  time.Time       `json:"failedAt"`
}

// Handler turns consumed messages into inquiry runs
type Handler struct {
	inbox           Inbox
	runner          Runner
	dlq             Publisher
	deadLetterTopic string
	logger          *zap.Logger
	now             func() time.Time

	pool *workerpool.Pool
}

// New creates a handler and its worker pool. The pool is started; call Stop
// to drain it.
func New(inbox Inbox, runner Runner, dlq Publisher, cfg workerpool.Config, logger *zap.Logger) (*Handler, error) {
	if inbox == nil || runner == nil || dlq == nil {
		return nil, errors.New("worker: inbox, runner and dead letter publisher are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Handler{
		inbox:           inbox,
		runner:          runner,
		dlq:             dlq,
		deadLetterTopic: redpanda.TopicDeadLetter,
		logger:          logger,
		now:             time.Now,
	}

	pool, err := workerpool.New(cfg, h.work, logger.Named("pool"))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	pool.Start()
	h.pool = pool
	return h, nil
}

// Stop drains the worker pool
func (h *Handler) Stop() error {
	return h.pool.Stop()
}

// Healthy reports whether the pool is accepting work
func (h *Handler) Healthy() bool {
	return h.pool.IsHealthy()
}

// Handle processes one request message. It returns an error only when the
// message should be redelivered.
func (h *Handler) Handle(ctx context.Context, msg *redpanda.ConsumedMessage) error {
	var req inquiry.Request
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return h.deadLetter(ctx, msg, "undecodable", err)
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = msg.Timestamp
	}
	if err := req.Validate(); err != nil {
		return h.deadLetter(ctx, msg, "invalid", err)
	}

	key := req.IdempotencyKey()
	logger := h.logger.With(
		zap.String("request_id", req.ID),
		zap.String("operation", req.Operation),
		zap.String("payer_id", req.PayerID))

	res, err := h.inbox.Process(ctx, key, "inquiry."+req.Operation, msg.Value, func(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
		return h.execute(ctx, req)
	})
	switch {
	case err == nil:
		if !res.IsNew && !res.WasRecovered {
			logger.Info("duplicate inquiry suppressed")
		}
		return nil
	case errors.Is(err, idempotency.ErrPreviouslyFailed), errors.Is(err, idempotency.ErrDuplicateMessage):
		logger.Info("inquiry already settled", zap.Error(err))
		return nil
	case errors.Is(err, idempotency.ErrPermanent):
		return h.deadLetter(ctx, msg, "permanent", err)
	case errors.Is(err, ErrRetriesExhausted):
		return h.deadLetter(ctx, msg, "exhausted", err)
	default:
		return err
	}
}

// execute runs the request on the pool and maps the pool result to inbox
// semantics
func (h *Handler) execute(ctx context.Context, req inquiry.Request) (json.RawMessage, error) {
	result, err := h.pool.SubmitWait(ctx, &workerpool.Task{ID: req.ID, Payload: req, Context: ctx})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		if result.Retryable {
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, result.Attempts, result.Error)
		}
		return nil, idempotency.Permanent(result.Error)
	}

	data, err := json.Marshal(result.Data)
	if err != nil {
		return nil, idempotency.Permanent(fmt.Errorf("failed to encode result: %w", err))
	}
	return data, nil
}

// work is the pool's worker function
func (h *Handler) work(ctx context.Context, task *workerpool.Task) *workerpool.Result {
	req, ok := task.Payload.(inquiry.Request)
	if !ok {
		return &workerpool.Result{Error: fmt.Errorf("unexpected task payload %T", task.Payload)}
	}

	res, out, err := h.runner.Run(ctx, req)
	if err != nil {
		return &workerpool.Result{Error: err, Retryable: retryable(ctx, err)}
	}
	if !out.Success && out.Kind.Transient() {
		return &workerpool.Result{
			Data:      res,
			Error:     fmt.Errorf("%s: %s", out.Kind, out.Message),
			Retryable: true,
		}
	}
	return &workerpool.Result{Success: true, Data: res}
}

// retryable reports whether an error from Run is worth another attempt.
// Errors outside the inquiry taxonomy are network failures.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	kind := inquiry.Classify(err)
	return kind == inquiry.KindNone || kind.Transient()
}

func (h *Handler) deadLetter(ctx context.Context, msg *redpanda.ConsumedMessage, reason string, cause error) error {
	dl := DeadLetter{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Reason:    reason,
		Error:     cause.Error(),
		FailedAt:  h.now().UTC(),
	}
	if json.Valid(msg.Value) {
		dl.Payload = msg.Value
	}

	data, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("failed to encode dead letter: %w", err)
	}
	if err := h.dlq.Publish(ctx, h.deadLetterTopic, string(msg.Key), data); err != nil {
		return fmt.Errorf("failed to publish dead letter: %w", err)
	}

	h.logger.Warn("message dead-lettered",
		zap.String("topic", msg.Topic),
		zap.Int32("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("reason", reason),
		zap.Error(cause))
	return nil
}
