package docsystem

import (
	"context"
	"io"
	"time"

	"folio/internal/domain/models/docsystem"
)

// FileService manages file metadata, blobs, history and view counts
type FileService interface {
	// UploadFile stores a new PDF blob in a document and records its metadata
	UploadFile(ctx context.Context, req *UploadFileRequest) (*docsystem.FileRecord, error)

	// GetFile returns a file's metadata with history
	GetFile(ctx context.Context, id string) (*docsystem.FileRecord, error)

	// OpenFile opens a file's blob for download
	OpenFile(ctx context.Context, id string) (*FileDownload, error)

	// UpdateFile applies a partial update and appends one history entry
	UpdateFile(ctx context.Context, id string, req *UpdateFileRequest) (*docsystem.FileRecord, error)

	// DeleteFile removes history, row and blob
	DeleteFile(ctx context.Context, id string) error

	// RecordView increments the view counter without touching history
	RecordView(ctx context.Context, id string) (*docsystem.FileRecord, error)
}

// UploadFileRequest represents a file upload
type UploadFileRequest struct {
	Title       string        `json:"title"`
	CategoryID  int64         `json:"category_id"`
	Author      string        `json:"author"`
	Description string        `json:"description"`
	DocumentID  string        `json:"document_id"`
	Blob        *UploadedFile `json:"-"`
}

// UpdateFileRequest is a patch: nil fields keep their previous value
type UpdateFileRequest struct {
	Title       *string       `json:"title,omitempty"`
	CategoryID  *int64        `json:"category_id,omitempty"`
	Description *string       `json:"description,omitempty"`
	Blob        *UploadedFile `json:"-"`
}

// IsEmpty reports whether the patch changes nothing
func (r *UpdateFileRequest) IsEmpty() bool {
	return r.Title == nil && r.CategoryID == nil && r.Description == nil && r.Blob == nil
}

// FileDownload is an open blob plus what a client needs to save it.
// Caller must close Content.
type FileDownload struct {
	Path     string // resolved storage path
	Filename string // <title>.pdf
	ModTime  time.Time
	Size     int64
	Content  io.ReadSeekCloser
}
