package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"
	docsysSvc "folio/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// searchService implements the SearchService interface
type searchService struct {
	searchRepo docsysRepo.SearchRepository
	logger     *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(searchRepo docsysRepo.SearchRepository, logger *slog.Logger) docsysSvc.SearchService {
	return &searchService{searchRepo: searchRepo, logger: logger}
}

// Search matches query literally and case-sensitively. The query is not trimmed.
func (s *searchService) Search(ctx context.Context, query string) ([]models.FileSummary, error) {
	err := validation.Validate(query,
		validation.Required.Error("q is required"),
		validation.RuneLength(1, config.MaxSearchQueryLength),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	results, err := s.searchRepo.SearchFiles(ctx, query)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search executed", "query", query, "results", len(results))
	return results, nil
}
