package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/wind-weibull-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wind-weibull-service/internal/adapter/kafka"
	"github.com/couchcryptid/wind-weibull-service/internal/config"
	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	"github.com/couchcryptid/wind-weibull-service/internal/observability"
	"github.com/couchcryptid/wind-weibull-service/internal/publisher"
	"github.com/couchcryptid/wind-weibull-service/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Recomputation event stream (feature-flagged via KAFKA_ENABLED).
	var (
		writer        *kafkaadapter.Writer
		sink          session.EventSink
		publisherDone = make(chan struct{})
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		pub := publisher.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval, cfg.EventBufferSize)
		sink = pub
		logger.Info("recomputation stream enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)

		go func() {
			defer close(publisherDone)
			if err := pub.Run(ctx); err != nil {
				logger.Error("publisher error", "error", err)
			}
		}()
	} else {
		close(publisherDone)
		logger.Info("recomputation stream disabled")
	}

	defaults := domain.DefaultParams()
	defaults.Scale = cfg.DefaultScale
	defaults.Shape = cfg.DefaultShape

	registry, err := session.NewRegistry(session.Options{
		MaxSessions: cfg.MaxSessions,
		Defaults:    defaults,
		Sink:        sink,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create session registry", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, registry, registry, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// The publisher flushes its remaining events once ctx is done.
	select {
	case <-publisherDone:
	case <-shutdownCtx.Done():
		logger.Warn("publisher did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
