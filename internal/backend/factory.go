package backend

import (
	"context"
	"fmt"

	"warga/internal/config"
	"warga/internal/log"
	"warga/internal/sheets"
	gsheet "warga/internal/sheets/google"
	"warga/internal/storage"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(c *config.Config) (Config, error) {
	if c == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(c.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", c.DataBackend)
	}
	cfg := Config{
		Type:          t,
		SQLiteDBPath:  c.SQLiteDBPath,
		DataDirectory: c.DataDirectory,
	}
	if c.SheetsEnabled() {
		cfg.GoogleSpreadsheetID = c.GoogleSpreadsheetID
		cfg.GoogleServiceAccountJSON = c.GoogleServiceAccountJSON
		cfg.GoogleServiceAccountFile = c.GoogleServiceAccountFile
	}
	return cfg, nil
}

type defaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &defaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *defaultFactory) Create(ctx context.Context, cfg Config) (*Result, error) {
	var (
		store storage.Store
		err   error
	)
	switch cfg.Type {
	case SQLite:
		store, err = storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	case File:
		store, err = storage.NewFileStore(cfg.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		f.logger.Info("Initialized file backend", "data_directory", cfg.DataDirectory)
	case Memory:
		store = storage.NewMemoryStore()
		f.logger.Warn("Initialized memory backend, data is lost on exit")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}

	publisher, err := f.publisher(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &Result{Store: store, Publisher: publisher, Cleanup: store.Close}, nil
}

func (f *defaultFactory) publisher(ctx context.Context, cfg Config) (sheets.ReportPublisher, error) {
	if cfg.GoogleSpreadsheetID == "" {
		f.logger.Info("Google Sheets publishing disabled")
		return nil, nil
	}
	creds, err := gsheet.CredentialsOption(ctx, cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load Google credentials: %w", err)
	}
	p, err := gsheet.NewPublisher(ctx, cfg.GoogleSpreadsheetID, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets publisher", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return p, nil
}
