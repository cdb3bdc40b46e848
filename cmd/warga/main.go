package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"warga/internal/cli"
	apphttp "warga/internal/http"
	"warga/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	app, cleanup, err := cli.OpenApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Failed to close data backend", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, app, apphttp.Options{
		Logger:        logger,
		RecapCacheTTL: cfg.RecapCacheTTL,
	})

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting warga server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"sheets_enabled", cfg.SheetsEnabled(),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
