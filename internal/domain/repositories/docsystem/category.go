package docsystem

import (
	"context"

	"folio/internal/domain/models/docsystem"
)

// CategoryRepository defines data access operations for categories
type CategoryRepository interface {
	// Create inserts a category and fills in its generated ID
	Create(ctx context.Context, category *docsystem.Category) error

	// GetByID retrieves a category by ID
	GetByID(ctx context.Context, id int64) (*docsystem.Category, error)

	// GetByName retrieves a category by its normalized name
	GetByName(ctx context.Context, name string) (*docsystem.Category, error)

	// List returns all categories in insertion order
	List(ctx context.Context) ([]docsystem.Category, error)

	// Delete removes a category
	Delete(ctx context.Context, id int64) error
}
