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

// PostgresSearchRepository implements the SearchRepository interface
type PostgresSearchRepository struct {
	pool *pgxpool.Pool
}

// NewSearchRepository creates a new search repository
func NewSearchRepository(config *postgres.RepositoryConfig) docsysRepo.SearchRepository {
	return &PostgresSearchRepository{pool: config.Pool}
}

// SearchFiles matches query as a literal, case-sensitive substring.
// strpos is used instead of LIKE so that % and _ in the query are not wildcards.
func (r *PostgresSearchRepository) SearchFiles(ctx context.Context, query string) ([]models.FileSummary, error) {
	sql := `
		SELECT f.id, f.title, f.description, COALESCE(c.name, ''), f.author, f.document_id,
		       MAX(h.modified_at)
		FROM files f
		LEFT JOIN categories c ON c.id = f.category_id
		LEFT JOIN file_history h ON h.file_id = f.id
		WHERE strpos(f.id, $1) > 0
		   OR strpos(f.title, $1) > 0
		   OR strpos(f.description, $1) > 0
		   OR strpos(f.author, $1) > 0
		   OR strpos(COALESCE(c.name, ''), $1) > 0
		GROUP BY f.id, f.title, f.description, c.name, f.author, f.document_id
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	defer rows.Close()

	results := []models.FileSummary{}
	for rows.Next() {
		var s models.FileSummary
		var modifiedAt *time.Time
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Category, &s.Author, &s.DocumentID, &modifiedAt); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		if modifiedAt != nil {
			utc := modifiedAt.UTC()
			s.ModifiedAt = &utc
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	return results, nil
}
