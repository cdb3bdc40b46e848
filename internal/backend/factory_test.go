package backend

import (
	"context"
	"path/filepath"
	"testing"

	"warga/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	c := &config.Config{DataBackend: "file", DataDirectory: "/tmp/warga", GoogleSpreadsheetID: "abc"}
	cfg, err := FromAppConfig(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != File || cfg.DataDirectory != "/tmp/warga" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.GoogleSpreadsheetID != "" {
		t.Fatalf("publishing without credentials must stay disabled")
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestFactoryCreate(t *testing.T) {
	dir := t.TempDir()
	cases := []Config{
		{Type: Memory},
		{Type: File, DataDirectory: filepath.Join(dir, "files")},
		{Type: SQLite, SQLiteDBPath: filepath.Join(dir, "db", "warga.db")},
	}
	f := NewFactory(nil)
	for _, cfg := range cases {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.Create(context.Background(), cfg)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			defer res.Cleanup()
			if res.Publisher != nil {
				t.Fatal("expected no publisher")
			}
			if err := res.Store.Put(context.Background(), "k", []byte(`{}`)); err != nil {
				t.Fatalf("put: %v", err)
			}
		})
	}

	if _, err := f.Create(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
