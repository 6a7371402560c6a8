package docsystem

import "context"

// ReconcileService compares the metadata store with the blob tree
type ReconcileService interface {
	// Scan reports inconsistencies without changing anything
	Scan(ctx context.Context) (*ReconcileReport, error)

	// Fix removes orphan blobs and orphan directories listed in the report.
	// Rows without blobs are reported only; they need a human decision.
	Fix(ctx context.Context, report *ReconcileReport) (int, error)
}

// BlobRef locates a blob by document and file id
type BlobRef struct {
	DocumentID string `json:"document_id" yaml:"document_id"`
	FileID     string `json:"file_id" yaml:"file_id"`
}

// ReconcileReport lists every mismatch between rows and disk
type ReconcileReport struct {
	OrphanBlobs        []BlobRef `json:"orphan_blobs" yaml:"orphan_blobs"`               // blob without row
	MissingBlobs       []BlobRef `json:"missing_blobs" yaml:"missing_blobs"`             // row without blob
	OrphanDirectories  []string  `json:"orphan_directories" yaml:"orphan_directories"`   // directory without document
	MissingDirectories []string  `json:"missing_directories" yaml:"missing_directories"` // document without directory
}

// Clean reports whether store and disk agree
func (r *ReconcileReport) Clean() bool {
	return len(r.OrphanBlobs) == 0 && len(r.MissingBlobs) == 0 &&
		len(r.OrphanDirectories) == 0 && len(r.MissingDirectories) == 0
}
