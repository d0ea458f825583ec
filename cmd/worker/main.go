package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/servvia/health-assistant/internal/bootstrap"
	"github.com/servvia/health-assistant/internal/config"
	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/observability/logging"
	"github.com/servvia/health-assistant/internal/observability/metrics"
)

const serviceName = "health-assistant-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", workerMetrics.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	metricsServer := &http.Server{
		Addr:        ":" + cfg.WorkerMetricsPort,
		Handler:     metricsMux,
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()

	logger.Info("worker subscribed", "subject", cfg.AuditSubject)
	err = app.Queue.SubscribePipelineAudit(ctx, func(handlerCtx context.Context, record domain.PipelineAudit) error {
		workerMetrics.StartAudit()
		started := time.Now()

		workerMetrics.ObserveQueueLag(serviceName, time.Since(record.CompletedAt))
		for _, stage := range record.Stages {
			workerMetrics.ObserveStage(serviceName, string(stage.Stage), stage.EndedAt.Sub(stage.StartedAt), stage.FallbackUsed)
		}
		if record.UnsafeDegraded {
			workerMetrics.RecordUnsafeDegraded(serviceName)
		}

		recordCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		recordErr := app.AuditRecorder.Record(recordCtx, record)
		workerMetrics.FinishAudit(serviceName, time.Since(started), recordErr)
		return recordErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker metrics shutdown error", "error", err)
	}
}
