package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"

	"folio/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) docsysRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

const fileColumns = `id, title, category_id, author, description, document_id, view`

// Create creates a new file row
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, title, category_id, author, description, document_id, view)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		file.ID,
		file.Title,
		file.CategoryID,
		file.Author,
		file.Description,
		file.DocumentID,
		file.View,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("file %s already exists", file.ID),
				ResourceType: "file",
				ResourceID:   file.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("create file: document or category %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	var file models.File
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Title,
		&file.CategoryID,
		&file.Author,
		&file.Description,
		&file.DocumentID,
		&file.View,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &file, nil
}

// Exists reports whether a file id is taken
func (r *PostgresFileRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM files WHERE id = $1)`

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check file id: %w", err)
	}

	return exists, nil
}

// ListByDocument lists a document's files with category name and latest modification
func (r *PostgresFileRepository) ListByDocument(ctx context.Context, documentID string) ([]models.FileWithCategory, error) {
	query := `
		SELECT f.id, f.title, f.category_id, f.author, f.description, f.document_id, f.view,
		       COALESCE(c.name, ''),
		       (SELECT MAX(h.modified_at) FROM file_history h WHERE h.file_id = f.id)
		FROM files f
		LEFT JOIN categories c ON c.id = f.category_id
		WHERE f.document_id = $1
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := []models.FileWithCategory{}
	for rows.Next() {
		var f models.FileWithCategory
		err := rows.Scan(
			&f.ID,
			&f.Title,
			&f.CategoryID,
			&f.Author,
			&f.Description,
			&f.DocumentID,
			&f.View,
			&f.Category,
			&f.ModifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// ListAll returns every file row
func (r *PostgresFileRepository) ListAll(ctx context.Context) ([]models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.Title, &f.CategoryID, &f.Author, &f.Description, &f.DocumentID, &f.View); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// Update writes the mutable metadata columns
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := `
		UPDATE files
		SET title = $1, category_id = $2, description = $3
		WHERE id = $4
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		file.Title,
		file.CategoryID,
		file.Description,
		file.ID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("update file: %w", domain.ErrInvalidCategory)
		}
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// IncrementView bumps the view counter in a single statement
func (r *PostgresFileRepository) IncrementView(ctx context.Context, id string) (int64, error) {
	query := `UPDATE files SET view = view + 1 WHERE id = $1 RETURNING view`

	var view int64
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&view); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return 0, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("increment view: %w", err)
	}

	return view, nil
}

// Delete removes a file row
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByDocument removes all file rows of a document
func (r *PostgresFileRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	query := `DELETE FROM files WHERE document_id = $1`

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete document files: %w", err)
	}

	return nil
}

// CountByCategory counts files referencing a category
func (r *PostgresFileRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	query := `SELECT COUNT(*) FROM files WHERE category_id = $1`

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count category files: %w", err)
	}

	return count, nil
}
