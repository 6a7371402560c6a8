package docsystem

import (
	"time"
)

// Document is a logical folder. It owns exactly one directory named by its id.
type Document struct {
	ID    string `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// DocumentRecord is a document with its modification history (newest first).
// ModifiedAt is always History[0].
type DocumentRecord struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	ModifiedAt *time.Time  `json:"modified_at"`
	History    []time.Time `json:"history"`
}

// DocumentDetail is a document with its files, newest modification first.
type DocumentDetail struct {
	DocumentRecord
	Files []FileRecord `json:"files"`
}

// NewDocumentRecord assembles a record from a document and its descending history.
func NewDocumentRecord(doc *Document, history []time.Time) *DocumentRecord {
	return &DocumentRecord{
		ID:         doc.ID,
		Title:      doc.Title,
		ModifiedAt: Latest(history),
		History:    nonNilHistory(history),
	}
}

// Latest returns the first entry of a descending history, or nil when empty.
func Latest(history []time.Time) *time.Time {
	if len(history) == 0 {
		return nil
	}
	latest := history[0]
	return &latest
}

func nonNilHistory(history []time.Time) []time.Time {
	if history == nil {
		return []time.Time{}
	}
	return history
}
