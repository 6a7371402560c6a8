package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/httputil"
)

// SearchHandler handles metadata search
type SearchHandler struct {
	searchService docsysSvc.SearchService
	logger        *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService docsysSvc.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search returns files whose metadata contains q
// GET /search?q=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.searchService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}
