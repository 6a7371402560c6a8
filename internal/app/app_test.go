package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/internal/config"
	docsysSvc "folio/internal/domain/services/docsystem"
)

func testConfig(t *testing.T, driver, dsn string, autoMigrate bool) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:    "test",
		StorageDir:     filepath.Join(t.TempDir(), "storage"),
		DatabaseDriver: driver,
		DatabaseURL:    dsn,
		AutoMigrate:    autoMigrate,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("memory store with storage root", func(t *testing.T) {
		cfg := testConfig(t, "memory", "", true)
		a, err := New(ctx, cfg, discardLogger())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer a.Close()

		if info, err := os.Stat(cfg.StorageDir); err != nil || !info.IsDir() {
			t.Fatalf("storage root not created: %v", err)
		}

		doc, err := a.Documents.CreateDocument(ctx, &docsysSvc.CreateDocumentRequest{Title: "Thesis"})
		if err != nil {
			t.Fatalf("CreateDocument() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(cfg.StorageDir, doc.ID)); err != nil {
			t.Errorf("document directory missing: %v", err)
		}

		tree, err := a.Tree.GetTree(ctx)
		if err != nil {
			t.Fatalf("GetTree() error = %v", err)
		}
		if len(tree.Documents) != 1 {
			t.Errorf("tree has %d documents, want 1", len(tree.Documents))
		}
	})

	t.Run("sqlite auto migrate", func(t *testing.T) {
		cfg := testConfig(t, "sqlite", filepath.Join(t.TempDir(), "folio.db"), true)
		a, err := New(ctx, cfg, discardLogger())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer a.Close()

		if err := a.Store().CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() error = %v", err)
		}
		if a.Blobs().Root() != cfg.StorageDir {
			t.Errorf("Root() = %q, want %q", a.Blobs().Root(), cfg.StorageDir)
		}
	})

	t.Run("sqlite without migrations", func(t *testing.T) {
		cfg := testConfig(t, "sqlite", filepath.Join(t.TempDir(), "folio.db"), false)
		_, err := New(ctx, cfg, discardLogger())
		if err == nil || !strings.Contains(err.Error(), "schema out of date") {
			t.Fatalf("New() error = %v, want schema out of date", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := testConfig(t, "oracle", "", true)
		if _, err := New(ctx, cfg, discardLogger()); err == nil {
			t.Fatal("New() expected error for unknown driver")
		}
	})
}
