package docsystem

import (
	"time"
)

// FileSummary is a search hit: one row per matching file.
type FileSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Author      string     `json:"author"`
	DocumentID  string     `json:"document_id"`
	ModifiedAt  *time.Time `json:"modified_at"`
}
