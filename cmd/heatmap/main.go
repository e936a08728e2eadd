package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/collision-heatmap/internal/adapter/file"
	httpadapter "github.com/couchcryptid/collision-heatmap/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/collision-heatmap/internal/adapter/kafka"
	"github.com/couchcryptid/collision-heatmap/internal/adapter/source"
	"github.com/couchcryptid/collision-heatmap/internal/config"
	"github.com/couchcryptid/collision-heatmap/internal/observability"
	"github.com/couchcryptid/collision-heatmap/internal/pipeline"
	"github.com/couchcryptid/collision-heatmap/internal/render"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := source.NewLoader(cfg.CSVSource, cfg.FetchTimeout, logger)

	publishers := []pipeline.Publisher{
		file.NewWriter(cfg.OutputPath, cfg.MatrixOutputPath, logger),
	}

	// Kafka cell publishing is feature-flagged via KAFKA_ENABLED.
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		publishers = append(publishers, kafkaWriter)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	opts := render.DefaultOptions()
	opts.LegendSteps = cfg.LegendSteps

	p := pipeline.New(loader, cfg.Filter, opts, publishers, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := p.Run(ctx)

	if shouldServe(cfg, runErr) {
		serve(ctx, cfg, p, logger)
	} else if cfg.ServeEnabled {
		logger.Warn("not serving: heatmap run failed", "error", runErr)
	}

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
}

// shouldServe reports whether to stay up after the run. A failed run ends the
// process instead of serving 503s.
func shouldServe(cfg *config.Config, runErr error) bool {
	return cfg.ServeEnabled && runErr == nil
}

// serve keeps the rendered heatmap available over HTTP until a shutdown signal.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
