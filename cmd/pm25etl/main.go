package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/anna-julia-wojcik/ztp-grupa-16/internal/adapter/http"
	kafkaadapter "github.com/anna-julia-wojcik/ztp-grupa-16/internal/adapter/kafka"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/adapter/xlsx"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/config"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/observability"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/pipeline"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/scheduler"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := xlsx.NewReader(xlsx.ReaderOptions{
		Paths:       cfg.InputFiles,
		Sheet:       cfg.InputSheet,
		HeaderRow:   cfg.HeaderRow,
		LabelRow:    cfg.LabelRow,
		DropColumns: cfg.DropColumns,
		CacheSize:   cfg.CacheSize,
	}, logger)

	reports := store.NewMemoryStore(cfg.ReportHistory)
	sinks := []pipeline.ReportSink{reports}
	if cfg.OutputDir != "" {
		sinks = append(sinks, xlsx.NewWriter(cfg.OutputDir, logger))
		logger.Info("xlsx output enabled", "dir", cfg.OutputDir)
	}
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, kafkaWriter)
		logger.Info("kafka output enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	analyzer := pipeline.NewAnalyzer(domain.Options{
		Threshold:    cfg.Threshold,
		FirstDataRow: cfg.FirstDataRow,
	}, nil, logger)
	p := pipeline.New(reader, analyzer, sinks, logger, metrics, pipeline.Options{
		LoadAttempts: cfg.LoadAttempts,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Batch mode: one run, exit status reports the outcome.
	if cfg.RunInterval == 0 {
		err := p.RunOnce(ctx)
		closeWriter(kafkaWriter, logger)
		if err != nil {
			logger.Error("pipeline run failed", "error", err)
			stop()
			os.Exit(1)
		}
		return
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, reports, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start periodic pipeline runs.
	sched := scheduler.New(cfg.RunInterval, p.RunOnce, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		stop()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	closeWriter(kafkaWriter, logger)

	logger.Info("shutdown complete")
}

func closeWriter(w *kafkaadapter.Writer, logger *slog.Logger) {
	if w == nil {
		return
	}
	if err := w.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
}
