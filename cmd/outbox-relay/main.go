// Package main provides the outbox relay entry point. It publishes result
// events written by the transaction log to Redpanda.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/app"
	"github.com/drfirst/go-edi/internal/infrastructure/postgres"
	"github.com/drfirst/go-edi/internal/infrastructure/redpanda"
	"github.com/drfirst/go-edi/internal/observability/metrics"
)

const serviceName = "outbox-relay"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := app.SignalContext()
	defer stop()

	rt, err := app.Start(ctx, serviceName)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.Config, rt.Logger

	db, err := rt.OpenDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database")

	producer, err := redpanda.NewProducer(redpanda.DefaultProducerConfig(cfg.Kafka.Brokers), logger.Named("producer"), rt.Metrics)
	if err != nil {
		return err
	}
	defer producer.Close()
	logger.Info("connected to Redpanda", zap.Strings("brokers", cfg.Kafka.Brokers))

	outbox := postgres.NewOutbox(db, producer, postgres.DefaultOutboxConfig(redpanda.TopicDeadLetter), logger.Named("outbox"), rt.Metrics)
	outbox.Start()
	logger.Info("outbox relay started")

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	outbox.Stop()
	_ = metricsServer.Close()

	if n, err := outbox.CleanupProcessed(context.Background(), 7*24*time.Hour); err != nil {
		logger.Warn("outbox cleanup failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("removed processed outbox entries", zap.Int64("count", n))
	}
	logger.Info("outbox relay stopped")
	return nil
}
