package docsystem

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"

	"folio/internal/repository/sqlite"
)

// SQLiteFileRepository implements the FileRepository interface
type SQLiteFileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *sqlite.RepositoryConfig) docsysRepo.FileRepository {
	return &SQLiteFileRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

const fileColumns = `id, title, category_id, author, description, document_id, view`

func (r *SQLiteFileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, title, category_id, author, description, document_id, view)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	executor := sqlite.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		file.ID,
		file.Title,
		file.CategoryID,
		file.Author,
		file.Description,
		file.DocumentID,
		file.View,
	)
	if err != nil {
		if sqlite.IsDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("file %s already exists", file.ID),
				ResourceType: "file",
				ResourceID:   file.ID,
			}
		}
		if sqlite.IsForeignKeyError(err) {
			return fmt.Errorf("create file: document or category %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (r *SQLiteFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	var file models.File
	executor := sqlite.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id).Scan(
		&file.ID,
		&file.Title,
		&file.CategoryID,
		&file.Author,
		&file.Description,
		&file.DocumentID,
		&file.View,
	)
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &file, nil
}

func (r *SQLiteFileRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	executor := sqlite.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM files WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check file id: %w", err)
	}
	return exists, nil
}

func (r *SQLiteFileRepository) ListByDocument(ctx context.Context, documentID string) ([]models.FileWithCategory, error) {
	query := `
		SELECT f.id, f.title, f.category_id, f.author, f.description, f.document_id, f.view,
		       COALESCE(c.name, ''),
		       (SELECT MAX(h.modified_at) FROM file_history h WHERE h.file_id = f.id)
		FROM files f
		LEFT JOIN categories c ON c.id = f.category_id
		WHERE f.document_id = ?
		ORDER BY f.rowid
	`

	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := []models.FileWithCategory{}
	for rows.Next() {
		var f models.FileWithCategory
		var modifiedAt sql.NullString
		err := rows.Scan(
			&f.ID,
			&f.Title,
			&f.CategoryID,
			&f.Author,
			&f.Description,
			&f.DocumentID,
			&f.View,
			&f.Category,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		if f.ModifiedAt, err = sqlite.ParseNullTime(modifiedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

func (r *SQLiteFileRepository) ListAll(ctx context.Context) ([]models.File, error) {
	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, `SELECT `+fileColumns+` FROM files ORDER BY rowid`)
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

func (r *SQLiteFileRepository) Update(ctx context.Context, file *models.File) error {
	query := `UPDATE files SET title = ?, category_id = ?, description = ? WHERE id = ?`

	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, file.Title, file.CategoryID, file.Description, file.ID)
	if err != nil {
		if sqlite.IsForeignKeyError(err) {
			return fmt.Errorf("update file: %w", domain.ErrInvalidCategory)
		}
		return fmt.Errorf("update file: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("file %s", file.ID))
}

func (r *SQLiteFileRepository) IncrementView(ctx context.Context, id string) (int64, error) {
	var view int64
	executor := sqlite.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, `UPDATE files SET view = view + 1 WHERE id = ? RETURNING view`, id).Scan(&view)
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return 0, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("increment view: %w", err)
	}
	return view, nil
}

func (r *SQLiteFileRepository) Delete(ctx context.Context, id string) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("file %s", id))
}

func (r *SQLiteFileRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, `DELETE FROM files WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("delete document files: %w", err)
	}
	return nil
}

func (r *SQLiteFileRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	executor := sqlite.GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE category_id = ?`, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count category files: %w", err)
	}
	return count, nil
}
