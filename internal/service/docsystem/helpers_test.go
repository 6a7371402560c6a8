package docsystem

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"syscall"
	"testing"
	"time"

	models "folio/internal/domain/models/docsystem"
	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/repository"
	"folio/internal/storage"

	"github.com/spf13/afero"
)

const storageRoot = "/storage"

// minimalPDF sniffs as application/pdf
var minimalPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// fakeClock advances one millisecond per reading so history entries never tie
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type testEnv struct {
	store      *repository.Store
	fs         afero.Fs
	blobs      *storage.BlobStore
	clock      *fakeClock
	documents  docsysSvc.DocumentService
	files      docsysSvc.FileService
	categories docsysSvc.CategoryService
	search     docsysSvc.SearchService
	reconcile  docsysSvc.ReconcileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOnFs(t, afero.NewMemMapFs())
}

func newTestEnvOnFs(t *testing.T, fsys afero.Fs) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store, err := repository.Open(context.Background(), repository.DriverMemory, "", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := fsys.MkdirAll(storageRoot, 0755); err != nil {
		t.Fatal(err)
	}
	blobs := storage.NewBlobStore(fsys, storageRoot)
	clock := newFakeClock()

	docHistory := NewHistoryLedger(store.DocumentHistory, clock.Now)
	fileHistory := NewHistoryLedger(store.FileHistory, clock.Now)
	ids := NewIDGenerator()
	validator := NewResourceValidator(store.Documents, store.Categories, blobs)

	return &testEnv{
		store: store,
		fs:    fsys,
		blobs: blobs,
		clock: clock,
		documents: NewDocumentService(store.Documents, store.Files, docHistory, fileHistory,
			store.TxManager, blobs, ids, validator, logger),
		files: NewFileService(store.Files, store.Categories, fileHistory,
			store.TxManager, blobs, ids, validator, logger),
		categories: NewCategoryService(store.Categories, store.Files, logger),
		search:     NewSearchService(store.Search, logger),
		reconcile:  NewReconcileService(store.Documents, store.Files, blobs, time.Now, logger),
	}
}

// failingRemoveFs fails every removal once broken is set
type failingRemoveFs struct {
	afero.Fs
	broken bool
}

func (f *failingRemoveFs) Remove(name string) error {
	if f.broken {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.EBUSY}
	}
	return f.Fs.Remove(name)
}

func (f *failingRemoveFs) RemoveAll(path string) error {
	if f.broken {
		return &fs.PathError{Op: "removeall", Path: path, Err: syscall.EBUSY}
	}
	return f.Fs.RemoveAll(path)
}

func (e *testEnv) mustCreateDocument(t *testing.T, title string) *models.DocumentRecord {
	t.Helper()
	doc, err := e.documents.CreateDocument(context.Background(), &docsysSvc.CreateDocumentRequest{Title: title})
	if err != nil {
		t.Fatalf("CreateDocument(%q) failed: %v", title, err)
	}
	return doc
}

func (e *testEnv) mustCreateCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category, err := e.categories.CreateCategory(context.Background(), &docsysSvc.CreateCategoryRequest{Name: name})
	if err != nil {
		t.Fatalf("CreateCategory(%q) failed: %v", name, err)
	}
	return category
}

func (e *testEnv) mustUpload(t *testing.T, documentID string, categoryID int64, title string) *models.FileRecord {
	t.Helper()
	file, err := e.files.UploadFile(context.Background(), uploadRequest(documentID, categoryID, title))
	if err != nil {
		t.Fatalf("UploadFile(%q) failed: %v", title, err)
	}
	return file
}

func uploadRequest(documentID string, categoryID int64, title string) *docsysSvc.UploadFileRequest {
	return &docsysSvc.UploadFileRequest{
		Title:       title,
		CategoryID:  categoryID,
		Author:      "Ann",
		Description: "draft of " + title,
		DocumentID:  documentID,
		Blob:        pdfBlob(minimalPDF),
	}
}

func pdfBlob(content []byte) *docsysSvc.UploadedFile {
	return &docsysSvc.UploadedFile{
		Filename: "upload.pdf",
		MimeType: models.PDFMimeType,
		Content:  bytes.NewReader(content),
	}
}

func ptr[T any](v T) *T {
	return &v
}

func updateTitle(title string) *docsysSvc.UpdateFileRequest {
	return &docsysSvc.UpdateFileRequest{Title: &title}
}
