package docsystem

import (
	"context"
	"fmt"

	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"
	"folio/internal/storage"
)

// ResourceValidator checks that the parents of a resource exist before a
// child is created or moved under them
type ResourceValidator struct {
	docRepo      docsysRepo.DocumentRepository
	categoryRepo docsysRepo.CategoryRepository
	blobs        *storage.BlobStore
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(
	docRepo docsysRepo.DocumentRepository,
	categoryRepo docsysRepo.CategoryRepository,
	blobs *storage.BlobStore,
) *ResourceValidator {
	return &ResourceValidator{
		docRepo:      docRepo,
		categoryRepo: categoryRepo,
		blobs:        blobs,
	}
}

// ValidateDocument ensures the document row exists and its directory is on disk.
// Returns domain.ErrNotFound otherwise.
func (v *ResourceValidator) ValidateDocument(ctx context.Context, documentID string) (*models.Document, error) {
	doc, err := v.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	exists, err := v.blobs.DocumentDirExists(documentID)
	if err != nil {
		return nil, fmt.Errorf("stat document directory: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("directory of document %s: %w", documentID, domain.ErrNotFound)
	}
	return doc, nil
}

// ValidateCategory ensures a category exists.
// Returns domain.ErrInvalidCategory otherwise.
func (v *ResourceValidator) ValidateCategory(ctx context.Context, categoryID int64) (*models.Category, error) {
	category, err := v.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrInvalidCategory, categoryID)
		}
		return nil, err
	}
	return category, nil
}
