package handler

import (
	"net/http"
)

// Handlers groups every handler the server mounts
type Handlers struct {
	Documents  *DocumentHandler
	Files      *FileHandler
	Categories *CategoryHandler
	Search     *SearchHandler
	Tree       *TreeHandler
}

// Register mounts all routes on mux
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Documents
	mux.HandleFunc("GET /document", h.Documents.GetDocument)
	mux.HandleFunc("POST /document", h.Documents.CreateDocument)
	mux.HandleFunc("PUT /document", h.Documents.RenameDocument)
	mux.HandleFunc("DELETE /document", h.Documents.DeleteDocument)
	mux.HandleFunc("GET /home", h.Documents.Home)

	// Files
	mux.HandleFunc("GET /file", h.Files.GetFile)
	mux.HandleFunc("POST /file", h.Files.UploadFile)
	mux.HandleFunc("PUT /file", h.Files.UpdateFile)
	mux.HandleFunc("DELETE /file", h.Files.DeleteFile)
	mux.HandleFunc("POST /file/view", h.Files.RecordView)

	// Categories
	mux.HandleFunc("GET /category", h.Categories.ListCategories)
	mux.HandleFunc("POST /category", h.Categories.CreateCategory)
	mux.HandleFunc("DELETE /category", h.Categories.DeleteCategory)

	mux.HandleFunc("GET /search", h.Search.Search)
	mux.HandleFunc("GET /tree", h.Tree.GetTree)
}
