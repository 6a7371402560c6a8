package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/postgres/*.sql files/sqlite/*.sql
var migrationFiles embed.FS

const (
	sqliteDir   = "files/sqlite"
	postgresDir = "files/postgres"
)

// MigrateSQLite runs all pending migrations against an open SQLite database.
// The caller keeps ownership of db.
func MigrateSQLite(db *sql.DB) error {
	m, err := newSQLiteMigrate(db)
	if err != nil {
		return err
	}
	return up(m)
}

// CheckSQLiteStatus verifies that the SQLite schema is at the latest version.
func CheckSQLiteStatus(db *sql.DB) error {
	m, err := newSQLiteMigrate(db)
	if err != nil {
		return err
	}
	return checkStatus(m, sqliteDir)
}

// MigratePostgres runs all pending migrations against the database at databaseURL.
func MigratePostgres(databaseURL string) error {
	m, err := newPostgresMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return up(m)
}

// CheckPostgresStatus verifies that the Postgres schema is at the latest version.
func CheckPostgresStatus(databaseURL string) error {
	m, err := newPostgresMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return checkStatus(m, postgresDir)
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func checkStatus(m *migrate.Migrate, dir string) error {
	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("database has no schema version (needs migration)")
		}
		return fmt.Errorf("failed to get database version: %w", err)
	}

	if dirty {
		return fmt.Errorf("database is in dirty state at version %d (migration failed previously)", version)
	}

	sourceDriver, err := iofs.New(migrationFiles, dir)
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	defer sourceDriver.Close()

	latest, err := latestVersion(sourceDriver)
	if err != nil {
		return fmt.Errorf("failed to determine latest version: %w", err)
	}

	switch {
	case version < latest:
		return fmt.Errorf("database is at version %d but latest is %d (%d migrations behind)",
			version, latest, latest-version)
	case version > latest:
		return fmt.Errorf("database version %d is ahead of binary version %d (binary needs update)",
			version, latest)
	}
	return nil
}

// newSQLiteMigrate wraps db without taking ownership: closing the returned
// instance would close db, so callers never do.
func newSQLiteMigrate(db *sql.DB) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, sqliteDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func newPostgresMigrate(databaseURL string) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, postgresDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, pgxURL(databaseURL))
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// pgxURL rewrites a libpq-style URL to the scheme the pgx/v5 migrate driver registers.
func pgxURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

func latestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}

	for {
		next, err := src.Next(version)
		if err != nil {
			break
		}
		version = next
	}
	return version, nil
}
