package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/httputil"
)

// DocumentHandler handles HTTP requests for documents
type DocumentHandler struct {
	documentService docsysSvc.DocumentService
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService docsysSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// documentBody carries the id for clients that send it in the body
type documentBody struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GetDocument returns a document with its history and files
// GET /document?id=
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documentService.GetDocument(r.Context(), resolveID(r, ""))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// CreateDocument creates a document and its storage directory
// POST /document
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateDocumentRequest
	if err := parseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	doc, err := h.documentService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// RenameDocument changes a document's title
// PUT /document
func (h *DocumentHandler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	var body documentBody
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}

	doc, err := h.documentService.RenameDocument(r.Context(), resolveID(r, body.ID),
		&docsysSvc.RenameDocumentRequest{Title: body.Title})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document, its files and its directory
// DELETE /document
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	var body documentBody
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}

	id := resolveID(r, body.ID)
	if err := h.documentService.DeleteDocument(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, deletedResponse{ID: id, Deleted: true})
}

// Home lists every document with its latest modification
// GET /home
func (h *DocumentHandler) Home(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documentService.ListDocuments(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}
