package docsystem

import (
	"context"

	"folio/internal/domain/models/docsystem"
)

// SearchService runs ad hoc substring search across file metadata
type SearchService interface {
	Search(ctx context.Context, query string) ([]docsystem.FileSummary, error)
}
