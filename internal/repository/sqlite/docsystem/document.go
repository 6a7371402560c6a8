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

// SQLiteDocumentRepository implements the DocumentRepository interface
type SQLiteDocumentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *sqlite.RepositoryConfig) docsysRepo.DocumentRepository {
	return &SQLiteDocumentRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

func (r *SQLiteDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, `INSERT INTO documents (id, title) VALUES (?, ?)`, doc.ID, doc.Title)
	if err != nil {
		if sqlite.IsDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s already exists", doc.ID),
				ResourceType: "document",
				ResourceID:   doc.ID,
			}
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *SQLiteDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	executor := sqlite.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, `SELECT id, title FROM documents WHERE id = ?`, id).Scan(&doc.ID, &doc.Title)
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

func (r *SQLiteDocumentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	executor := sqlite.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check document id: %w", err)
	}
	return exists, nil
}

func (r *SQLiteDocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, `SELECT id, title FROM documents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Title); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *SQLiteDocumentRepository) UpdateTitle(ctx context.Context, id, title string) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `UPDATE documents SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("document %s", id))
}

func (r *SQLiteDocumentRepository) Delete(ctx context.Context, id string) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		if sqlite.IsForeignKeyError(err) {
			return fmt.Errorf("document %s still has dependents: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("document %s", id))
}

// requireAffected turns a zero-row UPDATE/DELETE into ErrNotFound
func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
