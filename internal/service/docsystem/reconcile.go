package docsystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"time"

	docsysRepo "folio/internal/domain/repositories/docsystem"
	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/storage"
)

// reconcileService implements the ReconcileService interface
type reconcileService struct {
	docRepo  docsysRepo.DocumentRepository
	fileRepo docsysRepo.FileRepository
	blobs    *storage.BlobStore
	now      func() time.Time
	logger   *slog.Logger
}

// OrphanGracePeriod is how old an orphan must be before Fix removes it.
// A create writes its directory or blob before its row commits.
const OrphanGracePeriod = 5 * time.Minute

// NewReconcileService creates a new reconcile service. now is compared with
// file modification times, so it must be the wall clock in production.
func NewReconcileService(
	docRepo docsysRepo.DocumentRepository,
	fileRepo docsysRepo.FileRepository,
	blobs *storage.BlobStore,
	now func() time.Time,
	logger *slog.Logger,
) docsysSvc.ReconcileService {
	return &reconcileService{
		docRepo:  docRepo,
		fileRepo: fileRepo,
		blobs:    blobs,
		now:      now,
		logger:   logger,
	}
}

// Scan walks the blob tree and the metadata store and reports every mismatch
func (s *reconcileService) Scan(ctx context.Context) (*docsysSvc.ReconcileReport, error) {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	dirs, err := s.blobs.ListDocumentDirs()
	if err != nil {
		return nil, err
	}

	report := &docsysSvc.ReconcileReport{
		OrphanBlobs:        []docsysSvc.BlobRef{},
		MissingBlobs:       []docsysSvc.BlobRef{},
		OrphanDirectories:  []string{},
		MissingDirectories: []string{},
	}

	onDisk := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		onDisk[dir] = true
	}

	// document id -> file ids with a row
	rows := make(map[string]map[string]bool, len(docs))
	for _, doc := range docs {
		rows[doc.ID] = map[string]bool{}
		if !onDisk[doc.ID] {
			report.MissingDirectories = append(report.MissingDirectories, doc.ID)
		}
	}
	for _, f := range files {
		if set, ok := rows[f.DocumentID]; ok {
			set[f.ID] = true
		}
	}

	for _, dir := range dirs {
		if _, ok := rows[dir]; !ok {
			report.OrphanDirectories = append(report.OrphanDirectories, dir)
		}
	}

	for _, doc := range docs {
		blobIDs := map[string]bool{}
		if onDisk[doc.ID] {
			ids, err := s.blobs.ListBlobIDs(doc.ID)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				blobIDs[id] = true
				if !rows[doc.ID][id] {
					report.OrphanBlobs = append(report.OrphanBlobs, docsysSvc.BlobRef{DocumentID: doc.ID, FileID: id})
				}
			}
		}
		for id := range rows[doc.ID] {
			if !blobIDs[id] {
				report.MissingBlobs = append(report.MissingBlobs, docsysSvc.BlobRef{DocumentID: doc.ID, FileID: id})
			}
		}
	}

	sort.Strings(report.MissingDirectories)
	sort.Slice(report.MissingBlobs, func(i, j int) bool {
		a, b := report.MissingBlobs[i], report.MissingBlobs[j]
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.FileID < b.FileID
	})
	sort.Slice(report.OrphanBlobs, func(i, j int) bool {
		a, b := report.OrphanBlobs[i], report.OrphanBlobs[j]
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.FileID < b.FileID
	})

	s.logger.Info("storage scanned",
		"documents", len(docs),
		"files", len(files),
		"orphan_blobs", len(report.OrphanBlobs),
		"missing_blobs", len(report.MissingBlobs),
		"orphan_directories", len(report.OrphanDirectories),
		"missing_directories", len(report.MissingDirectories),
	)

	return report, nil
}

// Fix removes orphan blobs and directories. Each entry is re-checked against
// the store, and entries modified within OrphanGracePeriod are skipped since
// their row may not have committed yet.
func (s *reconcileService) Fix(ctx context.Context, report *docsysSvc.ReconcileReport) (int, error) {
	removed := 0
	cutoff := s.now().Add(-OrphanGracePeriod)

	for _, ref := range report.OrphanBlobs {
		exists, err := s.fileRepo.Exists(ctx, ref.FileID)
		if err != nil {
			return removed, err
		}
		if exists {
			continue
		}
		modTime, err := s.blobs.BlobModTime(ref.DocumentID, ref.FileID)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("stat orphan blob %s/%s: %w", ref.DocumentID, ref.FileID, err)
		}
		if modTime.After(cutoff) {
			s.logger.Info("orphan blob too recent, skipped", "document_id", ref.DocumentID, "file_id", ref.FileID)
			continue
		}
		if err := s.blobs.RemoveBlob(ref.DocumentID, ref.FileID); err != nil {
			return removed, fmt.Errorf("remove orphan blob %s/%s: %w", ref.DocumentID, ref.FileID, err)
		}
		s.logger.Info("orphan blob removed", "document_id", ref.DocumentID, "file_id", ref.FileID)
		removed++
	}

	for _, dir := range report.OrphanDirectories {
		exists, err := s.docRepo.Exists(ctx, dir)
		if err != nil {
			return removed, err
		}
		if exists {
			continue
		}
		modTime, err := s.blobs.DocumentDirModTime(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("stat orphan directory %s: %w", dir, err)
		}
		if modTime.After(cutoff) {
			s.logger.Info("orphan directory too recent, skipped", "document_id", dir)
			continue
		}
		if err := s.blobs.RemoveDocumentDir(dir); err != nil {
			return removed, fmt.Errorf("remove orphan directory %s: %w", dir, err)
		}
		s.logger.Info("orphan directory removed", "document_id", dir)
		removed++
	}

	return removed, nil
}
