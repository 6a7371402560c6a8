package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	"folio/internal/domain/repositories"
	docsysRepo "folio/internal/domain/repositories/docsystem"
	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo     docsysRepo.DocumentRepository
	fileRepo    docsysRepo.FileRepository
	docHistory  *HistoryLedger
	fileHistory *HistoryLedger
	txManager   repositories.TransactionManager
	blobs       *storage.BlobStore
	ids         *IDGenerator
	validator   *ResourceValidator
	logger      *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo docsysRepo.DocumentRepository,
	fileRepo docsysRepo.FileRepository,
	docHistory *HistoryLedger,
	fileHistory *HistoryLedger,
	txManager repositories.TransactionManager,
	blobs *storage.BlobStore,
	ids *IDGenerator,
	validator *ResourceValidator,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		docRepo:     docRepo,
		fileRepo:    fileRepo,
		docHistory:  docHistory,
		fileHistory: fileHistory,
		txManager:   txManager,
		blobs:       blobs,
		ids:         ids,
		validator:   validator,
		logger:      logger,
	}
}

// CreateDocument creates the directory first, then the row and its first
// history entry in one transaction. A failed transaction removes the directory.
func (s *documentService) CreateDocument(ctx context.Context, req *docsysSvc.CreateDocumentRequest) (*models.DocumentRecord, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateTitle(&req.Title); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	id, err := s.ids.Generate(ctx, s.docRepo.Exists)
	if err != nil {
		return nil, fmt.Errorf("generate document id: %w", err)
	}

	if err := s.blobs.CreateDocumentDir(id); err != nil {
		if errors.Is(err, storage.ErrDirectoryExists) {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("directory for document %s already exists", id),
				ResourceType: "document",
				ResourceID:   id,
			}
		}
		return nil, err
	}

	doc := &models.Document{ID: id, Title: req.Title}
	var created time.Time
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}
		ts, err := s.docHistory.Touch(txCtx, doc.ID)
		if err != nil {
			return err
		}
		created = ts
		return nil
	})
	if err != nil {
		if rmErr := s.blobs.RemoveDocumentDir(id); rmErr != nil {
			s.logger.Warn("failed to remove directory of unsaved document", "id", id, "error", rmErr)
		}
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"title", doc.Title,
	)

	return models.NewDocumentRecord(doc, []time.Time{created}), nil
}

// GetDocument returns the document with its files, most recently modified first
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.DocumentDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.docHistory.All(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.fileRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	files := make([]models.FileRecord, 0, len(rows))
	for i := range rows {
		fileHistory, err := s.fileHistory.All(ctx, rows[i].ID)
		if err != nil {
			return nil, err
		}
		files = append(files, *models.NewFileRecord(&rows[i].File, rows[i].Category, fileHistory))
	}

	sort.SliceStable(files, func(i, j int) bool {
		return newerThan(files[i].ModifiedAt, files[j].ModifiedAt)
	})

	return &models.DocumentDetail{
		DocumentRecord: *models.NewDocumentRecord(doc, history),
		Files:          files,
	}, nil
}

// ListDocuments returns every document with its history
func (s *documentService) ListDocuments(ctx context.Context) ([]models.DocumentRecord, error) {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.DocumentRecord, 0, len(docs))
	for i := range docs {
		history, err := s.docHistory.All(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		records = append(records, *models.NewDocumentRecord(&docs[i], history))
	}

	return records, nil
}

// RenameDocument changes the title and appends one history entry
func (s *documentService) RenameDocument(ctx context.Context, id string, req *docsysSvc.RenameDocumentRequest) (*models.DocumentRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validateTitle(&req.Title); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Title = req.Title

	var history []time.Time
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.UpdateTitle(txCtx, id, req.Title); err != nil {
			return err
		}
		if _, err := s.docHistory.Touch(txCtx, id); err != nil {
			return err
		}
		history, err = s.docHistory.All(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document renamed",
		"id", id,
		"title", req.Title,
	)

	return models.NewDocumentRecord(doc, history), nil
}

// DeleteDocument removes histories, files and the document row in one
// transaction, then the directory tree. A failure at that last step is
// reported as a StorageError; the rows stay deleted.
func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	if _, err := s.validator.ValidateDocument(ctx, id); err != nil {
		return err
	}

	var fileCount int
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		files, err := s.fileRepo.ListByDocument(txCtx, id)
		if err != nil {
			return err
		}
		fileIDs := make([]string, len(files))
		for i := range files {
			fileIDs[i] = files[i].ID
		}
		fileCount = len(fileIDs)

		if err := s.fileHistory.Purge(txCtx, fileIDs...); err != nil {
			return err
		}
		if err := s.fileRepo.DeleteByDocument(txCtx, id); err != nil {
			return err
		}
		if err := s.docHistory.Purge(txCtx, id); err != nil {
			return err
		}
		return s.docRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if err := s.blobs.RemoveDocumentDir(id); err != nil {
		s.logger.Error("document rows deleted but directory removal failed",
			"id", id,
			"error", err,
		)
		return &domain.StorageError{Op: "remove document directory", Err: err}
	}

	s.logger.Info("document deleted",
		"id", id,
		"files", fileCount,
	)

	return nil
}

func validateTitle(title *string) error {
	return validation.Validate(title,
		validation.Required.Error("title is required"),
		validation.RuneLength(1, config.MaxTitleLength),
	)
}

// newerThan orders timestamps descending with missing values last
func newerThan(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
