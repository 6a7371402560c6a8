package docsystem

import (
	"context"

	"folio/internal/domain/models/docsystem"
)

// SearchRepository runs substring queries over file metadata
type SearchRepository interface {
	// SearchFiles returns files whose id, title, description, author or category
	// name contains query (case-sensitive), one row per file
	SearchFiles(ctx context.Context, query string) ([]docsystem.FileSummary, error)
}
