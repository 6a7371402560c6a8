package repository

import (
	"context"
	"fmt"
	"log/slog"

	models "folio/internal/domain/models/docsystem"
	"folio/internal/domain/repositories"
	docsysRepo "folio/internal/domain/repositories/docsystem"

	"folio/internal/database/migrations"
	"folio/internal/repository/postgres"
	pgDocsys "folio/internal/repository/postgres/docsystem"
	"folio/internal/repository/sqlite"
	sqliteDocsys "folio/internal/repository/sqlite/docsystem"
)

// Supported metadata store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Store bundles the repositories of one metadata backend
type Store struct {
	Documents       docsysRepo.DocumentRepository
	Files           docsysRepo.FileRepository
	Categories      docsysRepo.CategoryRepository
	DocumentHistory docsysRepo.HistoryRepository
	FileHistory     docsysRepo.HistoryRepository
	Search          docsysRepo.SearchRepository
	TxManager       repositories.TransactionManager

	driver  string
	migrate func() error
	status  func() error
	close   func() error
}

// Open connects to the backend selected by driver. dsn is a postgres URL for
// "postgres" or a file path for "sqlite"; it is ignored for "memory".
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	switch driver {
	case DriverPostgres:
		return openPostgres(ctx, dsn, logger)
	case DriverSQLite:
		if dsn == "" {
			return nil, fmt.Errorf("database path required for sqlite store")
		}
		return openSQLite(dsn, driver, logger)
	case DriverMemory:
		return openSQLite(":memory:", driver, logger)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", driver)
	}
}

func openPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	pool, err := postgres.CreateConnectionPool(ctx, dsn)
	if err != nil {
		return nil, err
	}

	config := &postgres.RepositoryConfig{Pool: pool, Logger: logger}
	return &Store{
		Documents:       pgDocsys.NewDocumentRepository(config),
		Files:           pgDocsys.NewFileRepository(config),
		Categories:      pgDocsys.NewCategoryRepository(config),
		DocumentHistory: pgDocsys.NewHistoryRepository(config, models.HistoryKindDocument),
		FileHistory:     pgDocsys.NewHistoryRepository(config, models.HistoryKindFile),
		Search:          pgDocsys.NewSearchRepository(config),
		TxManager:       postgres.NewTransactionManager(config),
		driver:          DriverPostgres,
		migrate:         func() error { return migrations.MigratePostgres(dsn) },
		status:          func() error { return migrations.CheckPostgresStatus(dsn) },
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openSQLite(path, driver string, logger *slog.Logger) (*Store, error) {
	db, err := sqlite.OpenConnection(path)
	if err != nil {
		return nil, err
	}

	config := &sqlite.RepositoryConfig{DB: db, Logger: logger}
	store := &Store{
		Documents:       sqliteDocsys.NewDocumentRepository(config),
		Files:           sqliteDocsys.NewFileRepository(config),
		Categories:      sqliteDocsys.NewCategoryRepository(config),
		DocumentHistory: sqliteDocsys.NewHistoryRepository(config, models.HistoryKindDocument),
		FileHistory:     sqliteDocsys.NewHistoryRepository(config, models.HistoryKindFile),
		Search:          sqliteDocsys.NewSearchRepository(config),
		TxManager:       sqlite.NewTransactionManager(config),
		driver:          driver,
		migrate:         func() error { return migrations.MigrateSQLite(db) },
		status:          func() error { return migrations.CheckSQLiteStatus(db) },
		close:           db.Close,
	}

	// An in-memory database starts empty on every open
	if driver == DriverMemory {
		if err := store.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
	}
	return store, nil
}

// Driver returns the backend name the store was opened with
func (s *Store) Driver() string {
	return s.driver
}

// Migrate applies all pending schema migrations
func (s *Store) Migrate() error {
	return s.migrate()
}

// CheckMigrations reports whether the schema is at the latest version
func (s *Store) CheckMigrations() error {
	return s.status()
}

// Close releases the underlying connections
func (s *Store) Close() error {
	return s.close()
}
