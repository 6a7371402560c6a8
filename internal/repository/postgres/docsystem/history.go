package docsystem

import (
	"context"
	"fmt"
	"time"

	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"

	"folio/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// historyTable describes where one ledger kind is stored
type historyTable struct {
	name        string
	ownerColumn string
}

var historyTables = map[models.HistoryKind]historyTable{
	models.HistoryKindDocument: {name: "document_history", ownerColumn: "document_id"},
	models.HistoryKindFile:     {name: "file_history", ownerColumn: "file_id"},
}

// PostgresHistoryRepository implements the HistoryRepository interface
type PostgresHistoryRepository struct {
	pool  *pgxpool.Pool
	table historyTable
}

// NewHistoryRepository creates the history ledger for one entity kind
func NewHistoryRepository(config *postgres.RepositoryConfig, kind models.HistoryKind) docsysRepo.HistoryRepository {
	table, ok := historyTables[kind]
	if !ok {
		panic(fmt.Sprintf("unknown history kind %q", kind))
	}
	return &PostgresHistoryRepository{
		pool:  config.Pool,
		table: table,
	}
}

// Append records one modification
func (r *PostgresHistoryRepository) Append(ctx context.Context, ownerID string, modifiedAt time.Time) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, modified_at) VALUES ($1, $2)`, r.table.name, r.table.ownerColumn)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ownerID, models.Timestamp(modifiedAt)); err != nil {
		return fmt.Errorf("append %s: %w", r.table.name, err)
	}

	return nil
}

// List returns the owner's timestamps newest first
func (r *PostgresHistoryRepository) List(ctx context.Context, ownerID string) ([]time.Time, error) {
	query := fmt.Sprintf(`
		SELECT modified_at
		FROM %s
		WHERE %s = $1
		ORDER BY modified_at DESC, seq DESC
	`, r.table.name, r.table.ownerColumn)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.name, err)
	}
	defer rows.Close()

	history := []time.Time{}
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table.name, err)
		}
		history = append(history, t.UTC())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.table.name, err)
	}

	return history, nil
}

// DeleteByOwners removes all entries of the given owners
func (r *PostgresHistoryRepository) DeleteByOwners(ctx context.Context, ownerIDs ...string) error {
	if len(ownerIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1)`, r.table.name, r.table.ownerColumn)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ownerIDs); err != nil {
		return fmt.Errorf("delete %s: %w", r.table.name, err)
	}

	return nil
}
