package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/httputil"
	service "folio/internal/service/docsystem"
)

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	categoryService docsysSvc.CategoryService
	logger          *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService docsysSvc.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// ListCategories returns every category
// GET /category
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, categories)
}

// CreateCategory registers a category name
// POST /category
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateCategoryRequest
	if err := parseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes an unreferenced category
// DELETE /category
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	// json.Number accepts both 3 and "3"
	var body struct {
		ID json.Number `json:"id"`
	}
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}

	id, err := service.ParseCategoryID(resolveID(r, body.ID.String()))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, deletedResponse{ID: strconv.FormatInt(id, 10), Deleted: true})
}
