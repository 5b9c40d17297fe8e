package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/ericfeunekes/wxbench/internal/adapter/http"
	kafkaadapter "github.com/ericfeunekes/wxbench/internal/adapter/kafka"
	"github.com/ericfeunekes/wxbench/internal/config"
	"github.com/ericfeunekes/wxbench/internal/observability"
	"github.com/ericfeunekes/wxbench/internal/pipeline"
	"github.com/ericfeunekes/wxbench/internal/provider"
	"github.com/ericfeunekes/wxbench/internal/storage/jsonl"
	"github.com/ericfeunekes/wxbench/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	archive := jsonl.NewStore(cfg.JSONLRoot, nil)

	// Publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	client := provider.NewClient(&http.Client{Timeout: cfg.ProviderTimeout}, cfg.ProviderRetries, logger, nil)
	sources := buildSources(cfg, client, logger)

	collector := pipeline.New(sources, store, archive, logger, metrics, pipeline.Options{
		Latitude:    cfg.Latitude,
		Longitude:   cfg.Longitude,
		Timezone:    cfg.Timezone,
		RunInterval: cfg.RunInterval,
		Publisher:   publisher,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, collector, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := collector.Run(ctx); err != nil {
			logger.Error("collector error", "error", err)
		}
	}()

	// Wait for a signal, or for the collector to finish in one-shot mode.
	select {
	case <-ctx.Done():
	case <-runDone:
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildSources wires one adapter per provider whose credentials are present.
// The MSC feeds are public and always enabled.
func buildSources(cfg *config.Config, client *provider.Client, logger *slog.Logger) pipeline.Sources {
	sources := pipeline.Sources{
		GeoMet:  provider.NewMSCGeoMet(client),
		Prognos: provider.NewMSCRDPSPrognos(client),
	}

	if key := cfg.ProviderKey("WX_OPENWEATHER_API_KEY"); key != "" {
		sources.OpenWeather = provider.NewOpenWeather(client, key)
	}
	if key := cfg.ProviderKey("WX_TOMORROW_IO_API_KEY"); key != "" {
		sources.TomorrowIO = provider.NewTomorrowIO(client, key)
	}
	if key := cfg.ProviderKey("WX_ACCUWEATHER_API_KEY"); key != "" {
		sources.AccuWeather = provider.NewAccuWeather(client, key)
	}

	apiKey := cfg.ProviderKey("WX_AMBIENT_API_KEY")
	appKey := cfg.ProviderKey("WX_AMBIENT_APPLICATION_KEY")
	if apiKey != "" && appKey != "" {
		sources.Ambient = provider.NewAmbientWeather(client, apiKey, appKey, cfg.ProviderKey("WX_AMBIENT_DEVICE_MAC"))
	}

	enabled := []string{"msc_geomet", "msc_rdps_prognos"}
	if sources.OpenWeather != nil {
		enabled = append(enabled, "openweather")
	}
	if sources.TomorrowIO != nil {
		enabled = append(enabled, "tomorrow_io")
	}
	if sources.AccuWeather != nil {
		enabled = append(enabled, "accuweather")
	}
	if sources.Ambient != nil {
		enabled = append(enabled, "ambient_weather")
	}
	logger.Info("providers configured", "providers", enabled)

	return sources
}
