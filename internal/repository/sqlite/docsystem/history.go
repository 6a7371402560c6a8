package docsystem

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"

	"folio/internal/repository/sqlite"
)

type historyTable struct {
	name        string
	ownerColumn string
}

var historyTables = map[models.HistoryKind]historyTable{
	models.HistoryKindDocument: {name: "document_history", ownerColumn: "document_id"},
	models.HistoryKindFile:     {name: "file_history", ownerColumn: "file_id"},
}

// SQLiteHistoryRepository implements the HistoryRepository interface
type SQLiteHistoryRepository struct {
	db    *sql.DB
	table historyTable
}

// NewHistoryRepository creates the history ledger for one entity kind
func NewHistoryRepository(config *sqlite.RepositoryConfig, kind models.HistoryKind) docsysRepo.HistoryRepository {
	table, ok := historyTables[kind]
	if !ok {
		panic(fmt.Sprintf("unknown history kind %q", kind))
	}
	return &SQLiteHistoryRepository{
		db:    config.DB,
		table: table,
	}
}

func (r *SQLiteHistoryRepository) Append(ctx context.Context, ownerID string, modifiedAt time.Time) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, modified_at) VALUES (?, ?)`, r.table.name, r.table.ownerColumn)

	executor := sqlite.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, ownerID, sqlite.FormatTime(modifiedAt)); err != nil {
		return fmt.Errorf("append %s: %w", r.table.name, err)
	}
	return nil
}

func (r *SQLiteHistoryRepository) List(ctx context.Context, ownerID string) ([]time.Time, error) {
	query := fmt.Sprintf(`
		SELECT modified_at
		FROM %s
		WHERE %s = ?
		ORDER BY modified_at DESC, seq DESC
	`, r.table.name, r.table.ownerColumn)

	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.name, err)
	}
	defer rows.Close()

	history := []time.Time{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table.name, err)
		}
		t, err := sqlite.ParseTime(raw)
		if err != nil {
			return nil, err
		}
		history = append(history, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.table.name, err)
	}
	return history, nil
}

func (r *SQLiteHistoryRepository) DeleteByOwners(ctx context.Context, ownerIDs ...string) error {
	if len(ownerIDs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ownerIDs)), ",")
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s IN (%s)`, r.table.name, r.table.ownerColumn, placeholders)

	args := make([]any, len(ownerIDs))
	for i, id := range ownerIDs {
		args[i] = id
	}

	executor := sqlite.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", r.table.name, err)
	}
	return nil
}
