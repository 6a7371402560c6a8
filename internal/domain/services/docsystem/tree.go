package docsystem

import (
	"context"

	"folio/internal/domain/models/docsystem"
)

// TreeService builds the document/file hierarchy
type TreeService interface {
	GetTree(ctx context.Context) (*docsystem.TreeNode, error)
}
