package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"folio/internal/app"
	models "folio/internal/domain/models/docsystem"
	"folio/internal/repository"
	"folio/internal/storage"

	"github.com/spf13/afero"
)

var minimalPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type testServer struct {
	mux *http.ServeMux
	app *app.App
}

func newTestServer(t *testing.T, maxUploadBytes int64) *testServer {
	t.Helper()
	return newTestServerOnFs(t, maxUploadBytes, afero.NewMemMapFs())
}

func newTestServerOnFs(t *testing.T, maxUploadBytes int64, fsys afero.Fs) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store, err := repository.Open(context.Background(), repository.DriverMemory, "", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if err := fsys.MkdirAll("/storage", 0755); err != nil {
		t.Fatal(err)
	}
	clock := &tickingClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	a := app.Assemble(store, storage.NewBlobStore(fsys, "/storage"), clock.Now, logger)
	t.Cleanup(func() { a.Close() })

	handlers := &Handlers{
		Documents:  NewDocumentHandler(a.Documents, logger),
		Files:      NewFileHandler(a.Files, maxUploadBytes, logger),
		Categories: NewCategoryHandler(a.Categories, logger),
		Search:     NewSearchHandler(a.Search, logger),
		Tree:       NewTreeHandler(a.Tree, logger),
	}
	mux := http.NewServeMux()
	handlers.Register(mux)

	return &testServer{mux: mux, app: a}
}

func (s *testServer) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, body)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, r)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, target, body, "application/json")
}

func (s *testServer) createDocument(t *testing.T, title string) models.DocumentRecord {
	t.Helper()
	w := s.doJSON(t, http.MethodPost, "/document", map[string]string{"title": title})
	wantStatus(t, w, http.StatusCreated)
	return decode[models.DocumentRecord](t, w)
}

func (s *testServer) createCategory(t *testing.T, name string) models.Category {
	t.Helper()
	w := s.doJSON(t, http.MethodPost, "/category", map[string]string{"name": name})
	wantStatus(t, w, http.StatusCreated)
	return decode[models.Category](t, w)
}

func (s *testServer) upload(t *testing.T, fields map[string]string, blob *formFile) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, blob)
	return s.do(t, http.MethodPost, "/file", body, contentType)
}

type formFile struct {
	contentType string
	content     []byte
}

func pdfPart() *formFile {
	return &formFile{contentType: models.PDFMimeType, content: minimalPDF}
}

func multipartBody(t *testing.T, fields map[string]string, blob *formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if blob != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="upload.pdf"`)
		header.Set("Content-Type", blob.contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(blob.content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func uploadFields(documentID string, categoryID int64, title string) map[string]string {
	return map[string]string{
		"title":       title,
		"category_id": fmt.Sprint(categoryID),
		"author":      "Ann",
		"description": "draft",
		"document_id": documentID,
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, status, w.Body.String())
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestDocumentEndpoints(t *testing.T) {
	s := newTestServer(t, 0)

	doc := s.createDocument(t, "Thesis")
	if doc.ID == "" || doc.Title != "Thesis" || len(doc.History) != 1 {
		t.Fatalf("created document = %+v", doc)
	}

	w := s.do(t, http.MethodGet, "/document?id="+doc.ID, nil, "")
	wantStatus(t, w, http.StatusOK)
	detail := decode[models.DocumentDetail](t, w)
	if len(detail.Files) != 0 || len(detail.History) != 1 {
		t.Errorf("detail = %+v, want no files and one history entry", detail)
	}

	w = s.doJSON(t, http.MethodPut, "/document", map[string]string{"id": doc.ID, "title": "Thesis v2"})
	wantStatus(t, w, http.StatusOK)
	renamed := decode[models.DocumentRecord](t, w)
	if renamed.Title != "Thesis v2" || len(renamed.History) != 2 {
		t.Errorf("renamed = %+v", renamed)
	}

	w = s.do(t, http.MethodGet, "/home", nil, "")
	wantStatus(t, w, http.StatusOK)
	if home := decode[[]models.DocumentRecord](t, w); len(home) != 1 || home[0].ID != doc.ID {
		t.Errorf("home = %+v", home)
	}

	w = s.doJSON(t, http.MethodDelete, "/document", map[string]string{"id": doc.ID})
	wantStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodGet, "/document?id="+doc.ID, nil, "")
	wantStatus(t, w, http.StatusNotFound)
}

// brokenRemoveFs rejects removals once broken is set
type brokenRemoveFs struct {
	afero.Fs
	broken bool
}

func (f *brokenRemoveFs) Remove(name string) error {
	if f.broken {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.EBUSY}
	}
	return f.Fs.Remove(name)
}

func (f *brokenRemoveFs) RemoveAll(path string) error {
	if f.broken {
		return &fs.PathError{Op: "removeall", Path: path, Err: syscall.EBUSY}
	}
	return f.Fs.RemoveAll(path)
}

func TestDeleteEndpoints_StorageFailure(t *testing.T) {
	fsys := &brokenRemoveFs{Fs: afero.NewMemMapFs()}
	s := newTestServerOnFs(t, 0, fsys)

	doc := s.createDocument(t, "Thesis")
	category := s.createCategory(t, "thesis")
	w := s.upload(t, uploadFields(doc.ID, category.ID, "Chapter1"), pdfPart())
	wantStatus(t, w, http.StatusCreated)
	file := decode[models.FileRecord](t, w)

	fsys.broken = true

	w = s.doJSON(t, http.MethodDelete, "/file", map[string]string{"id": file.ID})
	wantStatus(t, w, http.StatusInternalServerError)
	problem := decode[map[string]interface{}](t, w)
	if detail, _ := problem["detail"].(string); !strings.Contains(detail, "database changes were committed") {
		t.Errorf("detail = %q, want committed notice", detail)
	}
	w = s.do(t, http.MethodGet, "/file?id="+file.ID, nil, "")
	wantStatus(t, w, http.StatusNotFound)

	w = s.doJSON(t, http.MethodDelete, "/document", map[string]string{"id": doc.ID})
	wantStatus(t, w, http.StatusInternalServerError)
	w = s.do(t, http.MethodGet, "/document?id="+doc.ID, nil, "")
	wantStatus(t, w, http.StatusNotFound)
}

func TestDocumentEndpoints_Errors(t *testing.T) {
	s := newTestServer(t, 0)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "create without title", method: http.MethodPost, target: "/document", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "create malformed", method: http.MethodPost, target: "/document", body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "get without id", method: http.MethodGet, target: "/document", wantStatus: http.StatusBadRequest},
		{name: "get unknown", method: http.MethodGet, target: "/document?id=missing", wantStatus: http.StatusNotFound},
		{name: "rename unknown", method: http.MethodPut, target: "/document", body: `{"id":"missing","title":"x"}`, wantStatus: http.StatusNotFound},
		{name: "delete unknown by query", method: http.MethodDelete, target: "/document?id=missing", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPatch, target: "/document", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			w := s.do(t, tt.method, tt.target, body, "application/json")
			wantStatus(t, w, tt.wantStatus)
		})
	}
}

func TestFileEndpoints_Scenario(t *testing.T) {
	s := newTestServer(t, 1<<20)

	doc := s.createDocument(t, "Thesis")
	category := s.createCategory(t, "thesis")

	w := s.upload(t, uploadFields(doc.ID, category.ID, "Chapter1"), pdfPart())
	wantStatus(t, w, http.StatusCreated)
	file := decode[models.FileRecord](t, w)
	if file.ID == "" || len(file.History) != 1 || file.Category != "THESIS" {
		t.Fatalf("uploaded = %+v", file)
	}

	for i := 0; i < 2; i++ {
		w = s.doJSON(t, http.MethodPost, "/file/view", map[string]string{"id": file.ID})
		wantStatus(t, w, http.StatusOK)
	}
	viewed := decode[models.FileRecord](t, w)
	if viewed.View != 2 || len(viewed.History) != 1 {
		t.Errorf("after two views: view=%d history=%d, want 2 and 1", viewed.View, len(viewed.History))
	}

	t.Run("inline", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/file?id="+file.ID, nil, "")
		wantStatus(t, w, http.StatusOK)
		if ct := w.Header().Get("Content-Type"); ct != models.PDFMimeType {
			t.Errorf("Content-Type = %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); cd != `inline; filename=Chapter1.pdf` {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if !bytes.Equal(w.Body.Bytes(), minimalPDF) {
			t.Error("served content differs from upload")
		}
	})

	t.Run("download", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/file?id="+file.ID+"&download=true", nil, "")
		wantStatus(t, w, http.StatusOK)
		if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
			t.Errorf("Content-Disposition = %q", cd)
		}
	})

	t.Run("detail", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/file?id="+file.ID+"&detail=true", nil, "")
		wantStatus(t, w, http.StatusOK)
		got := decode[models.FileRecord](t, w)
		if got.Title != "Chapter1" || got.View != 2 {
			t.Errorf("detail = %+v", got)
		}
	})

	w = s.doJSON(t, http.MethodDelete, "/file", map[string]string{"id": file.ID})
	wantStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodGet, "/file?id="+file.ID+"&detail=true", nil, "")
	wantStatus(t, w, http.StatusNotFound)
}

func TestUploadFile_Rejections(t *testing.T) {
	s := newTestServer(t, 1<<20)
	doc := s.createDocument(t, "Thesis")
	category := s.createCategory(t, "thesis")

	withField := func(key, value string) map[string]string {
		fields := uploadFields(doc.ID, category.ID, "Chapter1")
		fields[key] = value
		return fields
	}

	tests := []struct {
		name       string
		fields     map[string]string
		blob       *formFile
		wantStatus int
	}{
		{name: "declared non-pdf", fields: uploadFields(doc.ID, category.ID, "x"), blob: &formFile{contentType: "image/png", content: minimalPDF}, wantStatus: http.StatusBadRequest},
		{name: "content is not pdf", fields: uploadFields(doc.ID, category.ID, "x"), blob: &formFile{contentType: models.PDFMimeType, content: []byte("plain text")}, wantStatus: http.StatusBadRequest},
		{name: "missing file part", fields: uploadFields(doc.ID, category.ID, "x"), wantStatus: http.StatusBadRequest},
		{name: "missing title", fields: withField("title", ""), blob: pdfPart(), wantStatus: http.StatusBadRequest},
		{name: "non-integer category", fields: withField("category_id", "abc"), blob: pdfPart(), wantStatus: http.StatusBadRequest},
		{name: "unknown category", fields: withField("category_id", "999"), blob: pdfPart(), wantStatus: http.StatusNotFound},
		{name: "unknown document", fields: withField("document_id", "missing"), blob: pdfPart(), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.upload(t, tt.fields, tt.blob)
			wantStatus(t, w, tt.wantStatus)
		})
	}

	t.Run("json body", func(t *testing.T) {
		w := s.doJSON(t, http.MethodPost, "/file", map[string]string{"title": "x"})
		wantStatus(t, w, http.StatusBadRequest)
	})

	w := s.do(t, http.MethodGet, "/document?id="+doc.ID, nil, "")
	wantStatus(t, w, http.StatusOK)
	if detail := decode[models.DocumentDetail](t, w); len(detail.Files) != 0 {
		t.Errorf("rejected uploads left %d files", len(detail.Files))
	}
}

func TestUploadFile_TooLarge(t *testing.T) {
	s := newTestServer(t, 512)
	doc := s.createDocument(t, "Thesis")
	category := s.createCategory(t, "thesis")

	big := append(append([]byte{}, minimalPDF...), bytes.Repeat([]byte("x"), 4096)...)
	w := s.upload(t, uploadFields(doc.ID, category.ID, "Big"), &formFile{contentType: models.PDFMimeType, content: big})
	wantStatus(t, w, http.StatusRequestEntityTooLarge)
}

func TestUpdateFile(t *testing.T) {
	s := newTestServer(t, 1<<20)
	doc := s.createDocument(t, "Thesis")
	category := s.createCategory(t, "thesis")
	other := s.createCategory(t, "notes")

	w := s.upload(t, uploadFields(doc.ID, category.ID, "Chapter1"), pdfPart())
	wantStatus(t, w, http.StatusCreated)
	file := decode[models.FileRecord](t, w)

	t.Run("json title only", func(t *testing.T) {
		w := s.doJSON(t, http.MethodPut, "/file", map[string]string{"id": file.ID, "title": "X"})
		wantStatus(t, w, http.StatusOK)
		got := decode[models.FileRecord](t, w)
		if got.Title != "X" || got.CategoryID != category.ID || got.Description != "draft" {
			t.Errorf("updated = %+v", got)
		}
		if len(got.History) != 2 {
			t.Errorf("history length = %d, want 2", len(got.History))
		}
	})

	t.Run("json null description clears it", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/file?id="+file.ID, strings.NewReader(`{"description":null}`), "application/json")
		wantStatus(t, w, http.StatusOK)
		if got := decode[models.FileRecord](t, w); got.Description != "" {
			t.Errorf("description = %q, want empty", got.Description)
		}
	})

	t.Run("multipart with new blob and category", func(t *testing.T) {
		replacement := append(append([]byte{}, minimalPDF...), []byte("% v2\n")...)
		body, contentType := multipartBody(t, map[string]string{
			"id":          file.ID,
			"category_id": fmt.Sprint(other.ID),
		}, &formFile{contentType: models.PDFMimeType, content: replacement})

		w := s.do(t, http.MethodPut, "/file", body, contentType)
		wantStatus(t, w, http.StatusOK)
		if got := decode[models.FileRecord](t, w); got.Category != "NOTES" || got.Title != "X" {
			t.Errorf("updated = %+v", got)
		}

		w = s.do(t, http.MethodGet, "/file?id="+file.ID, nil, "")
		wantStatus(t, w, http.StatusOK)
		if !bytes.Equal(w.Body.Bytes(), replacement) {
			t.Error("blob was not replaced")
		}
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "empty patch", body: fmt.Sprintf(`{"id":%q}`, file.ID), wantStatus: http.StatusBadRequest},
		{name: "non-integer category", body: fmt.Sprintf(`{"id":%q,"category_id":"abc"}`, file.ID), wantStatus: http.StatusBadRequest},
		{name: "unknown category", body: fmt.Sprintf(`{"id":%q,"category_id":999}`, file.ID), wantStatus: http.StatusNotFound},
		{name: "unknown file", body: `{"id":"missing","title":"x"}`, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPut, "/file", strings.NewReader(tt.body), "application/json")
			wantStatus(t, w, tt.wantStatus)
		})
	}
}

func TestGetFile_Errors(t *testing.T) {
	s := newTestServer(t, 0)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "missing id", target: "/file", wantStatus: http.StatusBadRequest},
		{name: "bad boolean", target: "/file?id=x&detail=maybe", wantStatus: http.StatusBadRequest},
		{name: "unknown id", target: "/file?id=missing", wantStatus: http.StatusNotFound},
		{name: "detail unknown", target: "/file?id=missing&detail=1", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantStatus(t, s.do(t, http.MethodGet, tt.target, nil, ""), tt.wantStatus)
		})
	}
}

func TestCategoryEndpoints(t *testing.T) {
	s := newTestServer(t, 1<<20)

	research := s.createCategory(t, "  research  ")
	if research.Name != "RESEARCH" {
		t.Errorf("name = %q, want RESEARCH", research.Name)
	}

	w := s.doJSON(t, http.MethodPost, "/category", map[string]string{"name": "RESEARCH"})
	wantStatus(t, w, http.StatusConflict)
	problem := decode[map[string]interface{}](t, w)
	if problem["resource_id"] != fmt.Sprint(research.ID) {
		t.Errorf("resource_id = %v, want %d", problem["resource_id"], research.ID)
	}

	w = s.do(t, http.MethodGet, "/category", nil, "")
	wantStatus(t, w, http.StatusOK)
	if list := decode[[]models.Category](t, w); len(list) != 1 {
		t.Errorf("list = %+v", list)
	}

	doc := s.createDocument(t, "Thesis")
	wantStatus(t, s.upload(t, uploadFields(doc.ID, research.ID, "Chapter1"), pdfPart()), http.StatusCreated)

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
	}{
		{name: "non-integer id", target: "/category?id=abc", wantStatus: http.StatusBadRequest},
		{name: "missing id", target: "/category", wantStatus: http.StatusBadRequest},
		{name: "unknown id", target: "/category", body: `{"id":999}`, wantStatus: http.StatusNotFound},
		{name: "referenced", target: "/category", body: fmt.Sprintf(`{"id":"%d"}`, research.ID), wantStatus: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			wantStatus(t, s.do(t, http.MethodDelete, tt.target, body, "application/json"), tt.wantStatus)
		})
	}

	unused := s.createCategory(t, "unused")
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/category?id=%d", unused.ID), nil, "")
	wantStatus(t, w, http.StatusOK)
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestServer(t, 1<<20)
	doc := s.createDocument(t, "Thesis")
	category := s.createCategory(t, "thesis")
	wantStatus(t, s.upload(t, uploadFields(doc.ID, category.ID, "Chapter1"), pdfPart()), http.StatusCreated)
	wantStatus(t, s.upload(t, uploadFields(doc.ID, category.ID, "Appendix"), pdfPart()), http.StatusCreated)

	tests := []struct {
		name       string
		q          string
		wantStatus int
		wantHits   int
	}{
		{name: "missing q", q: "", wantStatus: http.StatusBadRequest},
		{name: "title", q: "Chapter", wantStatus: http.StatusOK, wantHits: 1},
		{name: "category name", q: "THESIS", wantStatus: http.StatusOK, wantHits: 2},
		{name: "case sensitive", q: "chapter", wantStatus: http.StatusOK, wantHits: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/search?q="+url.QueryEscape(tt.q), nil, "")
			wantStatus(t, w, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			if hits := decode[[]models.FileSummary](t, w); len(hits) != tt.wantHits {
				t.Errorf("hits = %d, want %d", len(hits), tt.wantHits)
			}
		})
	}
}

func TestTreeAndHealth(t *testing.T) {
	s := newTestServer(t, 1<<20)
	doc := s.createDocument(t, "Thesis")
	category := s.createCategory(t, "thesis")
	wantStatus(t, s.upload(t, uploadFields(doc.ID, category.ID, "Chapter1"), pdfPart()), http.StatusCreated)

	w := s.do(t, http.MethodGet, "/tree", nil, "")
	wantStatus(t, w, http.StatusOK)
	tree := decode[models.TreeNode](t, w)
	if len(tree.Documents) != 1 || len(tree.Documents[0].Files) != 1 {
		t.Fatalf("tree = %+v", tree)
	}
	if tree.Documents[0].Files[0].Category != "THESIS" {
		t.Errorf("file category = %q", tree.Documents[0].Files[0].Category)
	}

	w = s.do(t, http.MethodGet, "/health", nil, "")
	wantStatus(t, w, http.StatusOK)
	if health := decode[map[string]interface{}](t, w); health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}
}
