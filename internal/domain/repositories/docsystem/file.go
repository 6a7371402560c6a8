package docsystem

import (
	"context"

	"folio/internal/domain/models/docsystem"
)

// FileRepository defines data access operations for file metadata
type FileRepository interface {
	// Create inserts a file row with a caller-generated id
	Create(ctx context.Context, file *docsystem.File) error

	// GetByID retrieves a file by ID
	GetByID(ctx context.Context, id string) (*docsystem.File, error)

	// Exists reports whether a file with this primary key is present
	Exists(ctx context.Context, id string) (bool, error)

	// ListByDocument returns a document's files joined with category name and latest modification
	ListByDocument(ctx context.Context, documentID string) ([]docsystem.FileWithCategory, error)

	// ListAll returns every file row (used for storage reconciliation)
	ListAll(ctx context.Context) ([]docsystem.File, error)

	// Update writes title, category and description of an existing file
	Update(ctx context.Context, file *docsystem.File) error

	// IncrementView adds one to the view counter and returns the new value
	IncrementView(ctx context.Context, id string) (int64, error)

	// Delete removes a single file row
	Delete(ctx context.Context, id string) error

	// DeleteByDocument removes every file row of a document
	DeleteByDocument(ctx context.Context, documentID string) error

	// CountByCategory counts files referencing a category
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}
