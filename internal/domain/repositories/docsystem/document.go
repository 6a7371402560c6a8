package docsystem

import (
	"context"

	"folio/internal/domain/models/docsystem"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create inserts a document with a caller-generated id
	Create(ctx context.Context, doc *docsystem.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*docsystem.Document, error)

	// Exists reports whether a document with this primary key is present
	Exists(ctx context.Context, id string) (bool, error)

	// List returns every document in store order
	List(ctx context.Context) ([]docsystem.Document, error)

	// UpdateTitle changes a document's title
	UpdateTitle(ctx context.Context, id, title string) error

	// Delete removes the document row only; dependents must be deleted first
	Delete(ctx context.Context, id string) error
}
