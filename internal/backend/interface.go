package backend

import (
	"context"

	"warga/internal/sheets"
	"warga/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is a ready storage backend plus the optional report publisher.
type Result struct {
	Store     storage.Store
	Publisher sheets.ReportPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds what a Factory needs to open a backend.
type Config struct {
	Type Type

	SQLiteDBPath  string
	DataDirectory string

	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// Type names a storage backend.
type Type string

const (
	SQLite Type = "sqlite"
	File   Type = "file"
	Memory Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLite, File, Memory:
		return true
	default:
		return false
	}
}
