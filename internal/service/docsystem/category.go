package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"
	docsysSvc "folio/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// categoryService implements the CategoryService interface
type categoryService struct {
	categoryRepo docsysRepo.CategoryRepository
	fileRepo     docsysRepo.FileRepository
	logger       *slog.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo docsysRepo.CategoryRepository,
	fileRepo docsysRepo.FileRepository,
	logger *slog.Logger,
) docsysSvc.CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		fileRepo:     fileRepo,
		logger:       logger,
	}
}

// NormalizeCategoryName trims and uppercases a category name
func NormalizeCategoryName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// CreateCategory stores the normalized name; a duplicate is a ConflictError
// carrying the existing id
func (s *categoryService) CreateCategory(ctx context.Context, req *docsysSvc.CreateCategoryRequest) (*models.Category, error) {
	req.Name = NormalizeCategoryName(req.Name)
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, config.MaxCategoryNameLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	existing, err := s.categoryRepo.GetByName(ctx, req.Name)
	if err == nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("category '%s' already exists", existing.Name),
			ResourceType: "category",
			ResourceID:   strconv.FormatInt(existing.ID, 10),
		}
	}
	if !isNotFound(err) {
		return nil, err
	}

	category := &models.Category{Name: req.Name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		"id", category.ID,
		"name", category.Name,
	)

	return category, nil
}

// ListCategories returns all categories in store order
func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// DeleteCategory refuses to orphan files: a referenced category is a conflict
func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.fileRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("category %d is used by %d file(s)", id, count),
			ResourceType: "category",
			ResourceID:   strconv.FormatInt(id, 10),
		}
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category deleted", "id", id)
	return nil
}

// ParseCategoryID converts a raw id parameter, rejecting non-integers
func ParseCategoryID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be an integer", domain.ErrValidation)
	}
	return id, nil
}
