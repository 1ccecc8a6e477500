// Package main provides the inquiry worker entry point. It consumes queued
// eligibility and claim status requests and runs them against the
// clearinghouse at most once per idempotency key.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/app"
	"github.com/drfirst/go-edi/internal/infrastructure/postgres"
	"github.com/drfirst/go-edi/internal/infrastructure/redpanda"
	"github.com/drfirst/go-edi/internal/observability/metrics"
	"github.com/drfirst/go-edi/internal/worker"
	"github.com/drfirst/go-edi/pkg/idempotency"
)

const serviceName = "inquiry-worker"

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
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	admin, err := redpanda.NewAdmin(cfg.Kafka.Brokers, logger.Named("admin"))
	if err != nil {
		return err
	}
	err = admin.EnsureTopics(ctx)
	admin.Close()
	if err != nil {
		return err
	}

	inbox := idempotency.NewInbox(db, idempotency.DefaultInboxConfig(), logger.Named("inbox"))
	if n, err := inbox.RecoverStaleEntries(ctx); err != nil {
		logger.Warn("failed to recover stale inbox entries", zap.Error(err))
	} else if n > 0 {
		logger.Info("recovered stale inbox entries", zap.Int64("count", n))
	}
	inbox.StartCleanup()
	defer inbox.Stop()

	producer, err := redpanda.NewProducer(redpanda.DefaultProducerConfig(cfg.Kafka.Brokers), logger.Named("producer"), rt.Metrics)
	if err != nil {
		return err
	}
	defer producer.Close()

	svc, err := rt.InquiryService(postgres.NewTransactionLog(db, redpanda.TopicResults, logger.Named("translog")))
	if err != nil {
		return err
	}

	handler, err := worker.New(inbox, svc, producer, cfg.WorkerPool(), logger.Named("worker"))
	if err != nil {
		return err
	}

	consumer, err := redpanda.NewConsumer(
		redpanda.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.GroupID),
		handler.Handle, logger.Named("consumer"), rt.Metrics)
	if err != nil {
		return err
	}
	consumer.Start()
	logger.Info("inquiry worker started",
		zap.Strings("topics", redpanda.RequestTopics),
		zap.Int("workers", cfg.Worker.Workers))

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

	consumer.Stop()
	if err := handler.Stop(); err != nil {
		logger.Warn("worker pool stop", zap.Error(err))
	}
	_ = metricsServer.Close()
	logger.Info("inquiry worker stopped")
	return nil
}
