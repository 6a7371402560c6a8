package docsystem

import (
	"context"
	"log/slog"

	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"
	docsysSvc "folio/internal/domain/services/docsystem"
)

// treeService implements the TreeService interface
type treeService struct {
	docRepo      docsysRepo.DocumentRepository
	fileRepo     docsysRepo.FileRepository
	categoryRepo docsysRepo.CategoryRepository
	logger       *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	docRepo docsysRepo.DocumentRepository,
	fileRepo docsysRepo.FileRepository,
	categoryRepo docsysRepo.CategoryRepository,
	logger *slog.Logger,
) docsysSvc.TreeService {
	return &treeService{
		docRepo:      docRepo,
		fileRepo:     fileRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// GetTree loads every document, file and category once and nests files
// under their documents in store order
func (s *treeService) GetTree(ctx context.Context) (*models.TreeNode, error) {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	// First pass: one node per document
	tree := &models.TreeNode{Documents: make([]*models.DocumentTreeNode, 0, len(docs))}
	docMap := make(map[string]*models.DocumentTreeNode, len(docs))
	for _, doc := range docs {
		node := &models.DocumentTreeNode{
			ID:    doc.ID,
			Title: doc.Title,
			Files: []models.FileTreeNode{},
		}
		docMap[doc.ID] = node
		tree.Documents = append(tree.Documents, node)
	}

	// Second pass: attach files to their documents
	for _, f := range files {
		parent, ok := docMap[f.DocumentID]
		if !ok {
			continue
		}
		parent.Files = append(parent.Files, models.FileTreeNode{
			ID:       f.ID,
			Title:    f.Title,
			Category: names[f.CategoryID],
			View:     f.View,
		})
	}

	s.logger.Debug("tree built",
		"document_count", len(docs),
		"file_count", len(files),
	)

	return tree, nil
}
