// Package app wires configuration into the long-running binaries.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/clearinghouse"
	"github.com/drfirst/go-edi/internal/config"
	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/observability/logging"
	"github.com/drfirst/go-edi/internal/observability/metrics"
	"github.com/drfirst/go-edi/internal/observability/tracing"
	"github.com/drfirst/go-edi/internal/x12/generate"
	"github.com/drfirst/go-edi/pkg/circuitbreaker"
)

// Runtime is the shared state of one process
type Runtime struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Tracing *tracing.Provider
}

// Start loads configuration and builds the logger, metrics and tracer for
// service. EDI_CONFIG names an optional YAML file.
func Start(ctx context.Context, service string) (*Runtime, error) {
	cfg, err := config.Load(os.Getenv("EDI_CONFIG"))
	if err != nil {
		return nil, err
	}

	logger := logging.Must(cfg.Log()).With(zap.String("service", service))

	tp, err := tracing.Init(ctx, cfg.TracingFor(service))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(prometheus.DefaultRegisterer),
		Tracing: tp,
	}, nil
}

// Close flushes the tracer and the logger
func (r *Runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Tracing.Shutdown(ctx); err != nil {
		r.Logger.Warn("tracer shutdown failed", zap.Error(err))
	}
	_ = r.Logger.Sync()
}

// OpenDatabase connects to Postgres and verifies the connection
func (r *Runtime) OpenDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(r.Config.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if r.Config.Database.MaxConns > 0 {
		pcfg.MaxConns = r.Config.Database.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// InquiryService builds the orchestrator over the configured clearinghouse.
// sink may be nil.
func (r *Runtime) InquiryService(sink inquiry.ResultSink) (*inquiry.Service, error) {
	payers, err := r.Config.Directory()
	if err != nil {
		return nil, fmt.Errorf("failed to load payer directory: %w", err)
	}

	client, err := clearinghouse.NewClient(r.Config.ClearinghouseClient(),
		clearinghouse.WithLogger(r.Logger.Named("clearinghouse")),
		clearinghouse.WithMetrics(r.Metrics),
		clearinghouse.WithBreakers(circuitbreaker.NewManager(r.Logger)),
	)
	if err != nil {
		return nil, err
	}

	opts := []inquiry.Option{
		inquiry.WithLogger(r.Logger.Named("inquiry")),
		inquiry.WithMetrics(r.Metrics),
		inquiry.WithPoller(r.Config.Poller()),
	}
	if sink != nil {
		opts = append(opts, inquiry.WithSink(sink))
	}
	return inquiry.NewService(generate.New(r.Config.Envelope()), payers, client, r.Config.Inquiry(), opts...)
}

// SignalContext is cancelled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
