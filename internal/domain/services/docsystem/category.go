package docsystem

import (
	"context"

	"folio/internal/domain/models/docsystem"
)

// CategoryService manages the category registry
type CategoryService interface {
	// CreateCategory normalizes the name (trim + uppercase) and rejects duplicates
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*docsystem.Category, error)

	// ListCategories returns all categories
	ListCategories(ctx context.Context) ([]docsystem.Category, error)

	// DeleteCategory removes an unreferenced category
	DeleteCategory(ctx context.Context, id int64) error
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name string `json:"name"`
}
