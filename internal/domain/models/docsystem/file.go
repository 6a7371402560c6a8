package docsystem

import (
	"time"
)

// PDFMimeType is the only content type accepted for file blobs.
const PDFMimeType = "application/pdf"

// File is a versioned PDF inside a document. Its blob lives at
// <storage>/<document_id>/<id>.pdf; a row never exists without the blob.
type File struct {
	ID          string `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	CategoryID  int64  `json:"category_id" db:"category_id"`
	Author      string `json:"author" db:"author"`
	Description string `json:"description" db:"description"`
	DocumentID  string `json:"document_id" db:"document_id"`
	View        int64  `json:"view" db:"view"`
}

// FileRecord is a file enriched with its category name and history (newest first).
type FileRecord struct {
	File
	Category   string      `json:"category,omitempty"`
	ModifiedAt *time.Time  `json:"modified_at"`
	History    []time.Time `json:"history"`
}

// FileWithCategory is a file row joined with its category name and latest
// modification, as listed for a document.
type FileWithCategory struct {
	File
	Category   string
	ModifiedAt *time.Time
}

// NewFileRecord assembles a record from a file and its descending history.
func NewFileRecord(file *File, category string, history []time.Time) *FileRecord {
	return &FileRecord{
		File:       *file,
		Category:   category,
		ModifiedAt: Latest(history),
		History:    nonNilHistory(history),
	}
}

// BlobName is the on-disk filename of a file's blob.
func (f *File) BlobName() string {
	return f.ID + ".pdf"
}

// DownloadName is the filename suggested to clients. Never used on disk.
func (f *File) DownloadName() string {
	return f.Title + ".pdf"
}
