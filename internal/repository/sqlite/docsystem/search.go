package docsystem

import (
	"context"
	"database/sql"
	"fmt"

	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"

	"folio/internal/repository/sqlite"
)

// SQLiteSearchRepository implements the SearchRepository interface
type SQLiteSearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new search repository
func NewSearchRepository(config *sqlite.RepositoryConfig) docsysRepo.SearchRepository {
	return &SQLiteSearchRepository{db: config.DB}
}

// SearchFiles matches query as a literal, case-sensitive substring via instr.
func (r *SQLiteSearchRepository) SearchFiles(ctx context.Context, query string) ([]models.FileSummary, error) {
	stmt := `
		SELECT f.id, f.title, f.description, COALESCE(c.name, ''), f.author, f.document_id,
		       MAX(h.modified_at)
		FROM files f
		LEFT JOIN categories c ON c.id = f.category_id
		LEFT JOIN file_history h ON h.file_id = f.id
		WHERE instr(f.id, ?1) > 0
		   OR instr(f.title, ?1) > 0
		   OR instr(f.description, ?1) > 0
		   OR instr(f.author, ?1) > 0
		   OR instr(COALESCE(c.name, ''), ?1) > 0
		GROUP BY f.id
		ORDER BY f.rowid
	`

	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, stmt, query)
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	defer rows.Close()

	results := []models.FileSummary{}
	for rows.Next() {
		var s models.FileSummary
		var modifiedAt sql.NullString
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Category, &s.Author, &s.DocumentID, &modifiedAt); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		if s.ModifiedAt, err = sqlite.ParseNullTime(modifiedAt); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return results, nil
}
