package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"folio/internal/config"
	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/repository"
	service "folio/internal/service/docsystem"
	"folio/internal/storage"
)

// App wires the metadata store, the blob store and every service built on them.
// It is shared by the HTTP server and the admin CLI. The caller must call Close.
type App struct {
	Documents  docsysSvc.DocumentService
	Files      docsysSvc.FileService
	Categories docsysSvc.CategoryService
	Search     docsysSvc.SearchService
	Tree       docsysSvc.TreeService
	Reconcile  docsysSvc.ReconcileService

	store  *repository.Store
	blobs  *storage.BlobStore
	logger *slog.Logger
}

// New opens the configured store and storage root and assembles the services.
// With AutoMigrate the schema is brought up to date, otherwise an outdated
// schema is an error.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := repository.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.DatabaseDriver, err)
	}

	if cfg.AutoMigrate {
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	} else if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	blobs, err := storage.NewOSBlobStore(cfg.StorageDir)
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("app initialized",
		"driver", store.Driver(),
		"storage_dir", blobs.Root(),
	)
	return Assemble(store, blobs, time.Now, logger), nil
}

// Assemble builds the services over an already opened store and blob store.
// now stamps history entries.
func Assemble(store *repository.Store, blobs *storage.BlobStore, now func() time.Time, logger *slog.Logger) *App {
	docHistory := service.NewHistoryLedger(store.DocumentHistory, now)
	fileHistory := service.NewHistoryLedger(store.FileHistory, now)
	ids := service.NewIDGenerator()
	validator := service.NewResourceValidator(store.Documents, store.Categories, blobs)

	return &App{
		Documents: service.NewDocumentService(
			store.Documents, store.Files, docHistory, fileHistory,
			store.TxManager, blobs, ids, validator, logger,
		),
		Files: service.NewFileService(
			store.Files, store.Categories, fileHistory,
			store.TxManager, blobs, ids, validator, logger,
		),
		Categories: service.NewCategoryService(store.Categories, store.Files, logger),
		Search:     service.NewSearchService(store.Search, logger),
		Tree:       service.NewTreeService(store.Documents, store.Files, store.Categories, logger),
		Reconcile:  service.NewReconcileService(store.Documents, store.Files, blobs, time.Now, logger),
		store:      store,
		blobs:      blobs,
		logger:     logger,
	}
}

// Store returns the metadata store
func (a *App) Store() *repository.Store {
	return a.store
}

// Blobs returns the blob store
func (a *App) Blobs() *storage.BlobStore {
	return a.blobs
}

// Close releases the metadata store
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}
