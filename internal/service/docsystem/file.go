package docsystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
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

// fileService implements the FileService interface.
// A file row and its blob are created and removed together.
type fileService struct {
	fileRepo     docsysRepo.FileRepository
	categoryRepo docsysRepo.CategoryRepository
	fileHistory  *HistoryLedger
	txManager    repositories.TransactionManager
	blobs        *storage.BlobStore
	ids          *IDGenerator
	validator    *ResourceValidator
	logger       *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo docsysRepo.FileRepository,
	categoryRepo docsysRepo.CategoryRepository,
	fileHistory *HistoryLedger,
	txManager repositories.TransactionManager,
	blobs *storage.BlobStore,
	ids *IDGenerator,
	validator *ResourceValidator,
	logger *slog.Logger,
) docsysSvc.FileService {
	return &fileService{
		fileRepo:     fileRepo,
		categoryRepo: categoryRepo,
		fileHistory:  fileHistory,
		txManager:    txManager,
		blobs:        blobs,
		ids:          ids,
		validator:    validator,
		logger:       logger,
	}
}

// UploadFile writes the blob before inserting the row, so a crash in between
// leaves an orphan blob rather than a row without content.
func (s *fileService) UploadFile(ctx context.Context, req *docsysSvc.UploadFileRequest) (*models.FileRecord, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := s.validateUploadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	content, err := checkPDF(req.Blob)
	if err != nil {
		return nil, err
	}

	category, err := s.validator.ValidateCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.validator.ValidateDocument(ctx, req.DocumentID); err != nil {
		return nil, err
	}

	id, err := s.ids.Generate(ctx, s.fileRepo.Exists)
	if err != nil {
		return nil, fmt.Errorf("generate file id: %w", err)
	}

	size, err := s.blobs.CreateBlob(req.DocumentID, id, content)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		ID:          id,
		Title:       req.Title,
		CategoryID:  req.CategoryID,
		Author:      req.Author,
		Description: req.Description,
		DocumentID:  req.DocumentID,
	}

	var created time.Time
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.fileRepo.Create(txCtx, file); err != nil {
			return err
		}
		ts, err := s.fileHistory.Touch(txCtx, file.ID)
		if err != nil {
			return err
		}
		created = ts
		return nil
	})
	if err != nil {
		if rmErr := s.blobs.RemoveBlob(req.DocumentID, id); rmErr != nil {
			s.logger.Warn("failed to remove blob of unsaved file", "id", id, "error", rmErr)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", file.ID,
		"document_id", file.DocumentID,
		"category_id", file.CategoryID,
		"bytes", size,
	)

	return models.NewFileRecord(file, category.Name, []time.Time{created}), nil
}

// GetFile returns metadata, category name and history
func (s *fileService) GetFile(ctx context.Context, id string) (*models.FileRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, file)
}

// OpenFile opens the blob for download. A row whose blob is gone reports
// ErrBlobMissing, which callers can tell apart from an unknown id.
func (s *fileService) OpenFile(ctx context.Context, id string) (*docsysSvc.FileDownload, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	blob, err := s.blobs.OpenBlob(file.DocumentID, file.ID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file %s", domain.ErrBlobMissing, id)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}

	info, err := blob.Stat()
	if err != nil {
		blob.Close()
		return nil, fmt.Errorf("stat blob: %w", err)
	}
	if !info.Mode().IsRegular() {
		blob.Close()
		return nil, fmt.Errorf("%w: file %s", domain.ErrBlobMissing, id)
	}

	return &docsysSvc.FileDownload{
		Path:     s.blobs.BlobPath(file.DocumentID, file.ID),
		Filename: file.DownloadName(),
		ModTime:  info.ModTime(),
		Size:     info.Size(),
		Content:  blob,
	}, nil
}

// UpdateFile applies the provided fields, replaces the blob when one is given
// and appends exactly one history entry
func (s *fileService) UpdateFile(ctx context.Context, id string, req *docsysSvc.UpdateFileRequest) (*models.FileRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	if req == nil || req.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	existing, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.validator.ValidateCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	if req.Blob != nil {
		content, err := checkPDF(req.Blob)
		if err != nil {
			return nil, err
		}
		if _, err := s.blobs.ReplaceBlob(existing.DocumentID, existing.ID, content); err != nil {
			return nil, err
		}
	}

	merged := *existing
	if req.Title != nil {
		merged.Title = *req.Title
	}
	if req.CategoryID != nil {
		merged.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.fileRepo.Update(txCtx, &merged); err != nil {
			return err
		}
		_, err := s.fileHistory.Touch(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file updated",
		"id", id,
		"blob_replaced", req.Blob != nil,
	)

	return s.record(ctx, &merged)
}

// DeleteFile removes history and row in one transaction, then unlinks the blob
func (s *fileService) DeleteFile(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	exists, err := s.blobs.BlobExists(file.DocumentID, file.ID)
	if err != nil {
		return fmt.Errorf("stat blob: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: file %s", domain.ErrBlobMissing, id)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.fileHistory.Purge(txCtx, id); err != nil {
			return err
		}
		return s.fileRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if err := s.blobs.RemoveBlob(file.DocumentID, file.ID); err != nil {
		s.logger.Error("file rows deleted but blob removal failed",
			"id", id,
			"error", err,
		)
		return &domain.StorageError{Op: "remove blob", Err: err}
	}

	s.logger.Info("file deleted",
		"id", id,
		"document_id", file.DocumentID,
	)

	return nil
}

// RecordView increments the view counter. Views are not modifications, so
// history is left untouched.
func (s *fileService) RecordView(ctx context.Context, id string) (*models.FileRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	if _, err := s.fileRepo.IncrementView(ctx, id); err != nil {
		return nil, err
	}

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("file viewed", "id", id, "view", file.View)

	return s.record(ctx, file)
}

// record attaches category name and history to a file row
func (s *fileService) record(ctx context.Context, file *models.File) (*models.FileRecord, error) {
	var categoryName string
	category, err := s.categoryRepo.GetByID(ctx, file.CategoryID)
	switch {
	case err == nil:
		categoryName = category.Name
	case !isNotFound(err):
		return nil, err
	}

	history, err := s.fileHistory.All(ctx, file.ID)
	if err != nil {
		return nil, err
	}
	return models.NewFileRecord(file, categoryName, history), nil
}

func (s *fileService) validateUploadRequest(req *docsysSvc.UploadFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.CategoryID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Author, validation.Required, validation.RuneLength(1, config.MaxAuthorLength)),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxDescriptionLength)),
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.Blob, validation.Required.Error("file is required")),
	)
}

func (s *fileService) validateUpdateRequest(req *docsysSvc.UpdateFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.CategoryID, validation.Min(int64(1))),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxDescriptionLength)),
	)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
