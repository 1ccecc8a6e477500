package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/inquiry"
)

//go:embed schema.sql
var schema string

// Migrate creates the transaction log, outbox and inbox tables
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// AggregateInquiry is the outbox aggregate type for completed exchanges
const AggregateInquiry = "inquiry"

// TransactionLog stores every exchange keyed by control number and queues a
// result event in the same transaction. It implements inquiry.ResultSink.
type TransactionLog struct {
	pool   *pgxpool.Pool
	topic  string
	logger *zap.Logger
	tracer trace.Tracer
}

// NewTransactionLog creates a log that announces results on topic
func NewTransactionLog(pool *pgxpool.Pool, topic string, logger *zap.Logger) *TransactionLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionLog{
		pool:   pool,
		topic:  topic,
		logger: logger,
		tracer: otel.Tracer("transaction-log"),
	}
}

var _ inquiry.ResultSink = (*TransactionLog)(nil)

// logRow is one transaction_log row
type logRow struct {
	ControlNumber string
	Operation     string
	PayerID       string
	Request       string
	Response      string
	Result        json.RawMessage
	Success       bool
	Kind          string
}

// prepare splits a record into its log row and outbox entry
func prepare(rec inquiry.Record, topic string) (*logRow, *OutboxEntry, error) {
	if rec.Key == "" {
		return nil, nil, errors.New("record has no control number")
	}
	ev, err := rec.Event()
	if err != nil {
		return nil, nil, err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode event: %w", err)
	}

	row := &logRow{
		ControlNumber: rec.Key,
		Operation:     rec.Operation,
		PayerID:       rec.PayerID,
		Request:       rec.Request,
		Response:      rec.Response,
		Result:        ev.Result,
		Success:       rec.Success,
		Kind:          string(rec.Kind),
	}
	entry := &OutboxEntry{
		AggregateID:   rec.Key,
		AggregateType: AggregateInquiry,
		EventType:     rec.Operation + ".completed",
		Payload:       payload,
		KafkaTopic:    topic,
		KafkaKey:      rec.Key,
	}
	return row, entry, nil
}

// Record writes the exchange and its outbox entry atomically
func (l *TransactionLog) Record(ctx context.Context, rec inquiry.Record) error {
	ctx, span := l.tracer.Start(ctx, "transaction_log_record",
		trace.WithAttributes(
			attribute.String("control_number", rec.Key),
			attribute.String("operation", rec.Operation),
		))
	defer span.End()

	row, entry, err := prepare(rec, l.topic)
	if err != nil {
		span.RecordError(err)
		return err
	}

	query := `
		INSERT INTO transaction_log
			(control_number, operation, payer_id, request_x12, response_x12, result, success, kind, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (control_number, operation) DO UPDATE
		SET response_x12 = EXCLUDED.response_x12,
		    result = EXCLUDED.result,
		    success = EXCLUDED.success,
		    kind = EXCLUDED.kind,
		    recorded_at = EXCLUDED.recorded_at
	`

	err = pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			row.ControlNumber, row.Operation, row.PayerID,
			row.Request, row.Response, row.Result,
			row.Success, row.Kind, rec.RecordedAt,
		); err != nil {
			return fmt.Errorf("failed to write transaction log: %w", err)
		}
		return WriteEntry(ctx, tx, entry)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	l.logger.Debug("exchange recorded",
		zap.String("control_number", row.ControlNumber),
		zap.String("operation", row.Operation),
		zap.Int64("outbox_id", entry.ID))
	return nil
}

// Exchange is a stored request/response pair
type Exchange struct {
	ControlNumber string
	Operation     string
	PayerID       string
	Request       string
	Response      string
	Result        json.RawMessage
	Success       bool
	Kind          string
}

// Lookup returns the stored exchange for a control number and operation
func (l *TransactionLog) Lookup(ctx context.Context, controlNumber, operation string) (*Exchange, error) {
	query := `
		SELECT control_number, operation, payer_id, request_x12, response_x12, result, success, kind
		FROM transaction_log
		WHERE control_number = $1 AND operation = $2
	`

	ex := &Exchange{}
	err := l.pool.QueryRow(ctx, query, controlNumber, operation).Scan(
		&ex.ControlNumber, &ex.Operation, &ex.PayerID,
		&ex.Request, &ex.Response, &ex.Result, &ex.Success, &ex.Kind,
	)
	if err != nil {
		return nil, err
	}
	return ex, nil
}
