// Package main provides the EDI gateway entry point: the synchronous HTTP API
// in front of the clearinghouse.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/api"
	"github.com/drfirst/go-edi/internal/app"
	"github.com/drfirst/go-edi/internal/cache"
	"github.com/drfirst/go-edi/internal/infrastructure/postgres"
	"github.com/drfirst/go-edi/internal/infrastructure/redpanda"
)

const serviceName = "edi-gateway"

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
	logger.Info("connected to database")

	producer, err := redpanda.NewProducer(redpanda.DefaultProducerConfig(cfg.Kafka.Brokers), logger.Named("producer"), rt.Metrics)
	if err != nil {
		return err
	}
	defer producer.Close()

	sink := postgres.NewTransactionLog(db, redpanda.TopicResults, logger.Named("translog"))
	svc, err := rt.InquiryService(sink)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Service:     svc,
		Cache:       cache.NewEligibilityCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval, rt.Metrics),
		Queue:       producer,
		Metrics:     rt.Metrics,
		APIKeys:     cfg.Server.APIKeys,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
		ServiceName: serviceName,
		Ready: map[string]api.ReadinessCheck{
			"database": func(ctx context.Context) error { return db.Ping(ctx) },
			"kafka":    producer.Ping,
		},
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting EDI gateway", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}
