package docsystem

import (
	"context"

	"folio/internal/domain/models/docsystem"
)

// DocumentService manages documents and their storage directories
type DocumentService interface {
	// CreateDocument creates the document directory, row and first history entry
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*docsystem.DocumentRecord, error)

	// GetDocument returns the document, its history and its files
	GetDocument(ctx context.Context, id string) (*docsystem.DocumentDetail, error)

	// ListDocuments returns every document with its history (home listing)
	ListDocuments(ctx context.Context) ([]docsystem.DocumentRecord, error)

	// RenameDocument changes the title and appends a history entry
	RenameDocument(ctx context.Context, id string, req *RenameDocumentRequest) (*docsystem.DocumentRecord, error)

	// DeleteDocument cascades over files and histories, then removes the directory
	DeleteDocument(ctx context.Context, id string) error
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Title string `json:"title"`
}

// RenameDocumentRequest represents a document title change
type RenameDocumentRequest struct {
	Title string `json:"title"`
}
