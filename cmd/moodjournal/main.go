package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"moodjournal/internal/backend"
	"moodjournal/internal/cli"
	apphttp "moodjournal/internal/http"
	"moodjournal/internal/log"
)

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), time.Minute)
	result, err := backend.NewFactory(logger).CreateBackend(initCtx, backendCfg)
	cancelInit()
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, result.Journal, apphttp.Options{
		ChartWindow: cfg.ChartWindow,
		Logger:      logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting moodjournal server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"persistent", result.Persistent,
		"events", result.EventsEnabled,
		log.FieldCount, result.Journal.Count())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
