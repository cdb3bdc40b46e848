// Package cli holds the start-up steps shared by cmd/warga and
// cmd/wargactl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"warga/internal/backend"
	"warga/internal/config"
	"warga/internal/core"
	"warga/internal/log"
	"warga/internal/services"
	"warga/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT
// values and installs it as the slog default. An unknown level falls back
// to info. A nil out writes to stdout.
func SetupLogger(level, format string, out io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Format = format
	if out != nil {
		cfg.Output = out
	}
	lvl, err := log.ParseLevel(level)
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err.Error())
	}
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// OpenApp opens the configured backend and wires the services over it.
// The returned cleanup closes the store.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.App, backend.CleanupFunc, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}

	state := services.NewState(ctx, storage.NewRepository(res.Store),
		services.WithLogger(logger),
		services.WithFallbackCategory(core.Category(cfg.DefaultCategory)))
	auth, err := services.NewAuth(state, 0,
		services.Credential{Username: cfg.AdminUsername, Password: cfg.AdminPassword, Role: core.RoleAdmin},
		services.Credential{Username: cfg.TreasurerUsername, Password: cfg.TreasurerPassword, Role: core.RoleTreasurer})
	if err != nil {
		_ = res.Cleanup()
		return nil, nil, err
	}
	return services.NewApp(state, auth, res.Publisher), res.Cleanup, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. When
// the signal arrives, cleanup runs with a context bounded by timeout.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
