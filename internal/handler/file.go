package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"folio/internal/domain"
	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/httputil"
)

// multipartMemory is how much of a multipart body is kept in memory
// before parts spill to temp files.
const multipartMemory = 8 << 20

// FileHandler handles HTTP requests for files
type FileHandler struct {
	fileService    docsysSvc.FileService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService docsysSvc.FileService, maxUploadBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService:    fileService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// fileIDBody carries the id for clients that send it in the body
type fileIDBody struct {
	ID string `json:"id"`
}

// fileUpdateBody is the JSON form of a file update
type fileUpdateBody struct {
	ID          string                  `json:"id"`
	Title       httputil.OptionalString `json:"title"`
	CategoryID  *json.Number            `json:"category_id"`
	Description httputil.OptionalString `json:"description"`
}

// GetFile serves a file's metadata or its PDF content
// GET /file?id=&detail=true|download=true
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := resolveID(r, "")

	detail, err := queryBool(r, "detail")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	download, err := queryBool(r, "download")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if detail {
		file, err := h.fileService.GetFile(r.Context(), id)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, file)
		return
	}

	blob, err := h.fileService.OpenFile(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer blob.Content.Close()

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType(disposition, map[string]string{"filename": blob.Filename}))
	http.ServeContent(w, r, blob.Filename, blob.ModTime, blob.Content)
}

// UploadFile stores a new PDF in a document
// POST /file (multipart/form-data)
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(w, r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer form.RemoveAll()

	categoryID, err := formInt(form, "category_id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	blob, closeBlob, err := formBlob(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer closeBlob()

	req := &docsysSvc.UploadFileRequest{
		Title:       formValue(form, "title"),
		CategoryID:  categoryID,
		Author:      formValue(form, "author"),
		Description: formValue(form, "description"),
		DocumentID:  formValue(form, "document_id"),
		Blob:        blob,
	}

	file, err := h.fileService.UploadFile(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// UpdateFile applies a partial update, optionally replacing the PDF
// PUT /file (multipart/form-data or JSON)
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	var (
		id  string
		req *docsysSvc.UpdateFileRequest
	)

	if isMultipart(r) {
		form, err := h.parseMultipart(w, r)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		defer form.RemoveAll()

		blob, closeBlob, err := formBlob(r)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		defer closeBlob()

		req, err = multipartPatch(form, blob)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		id = resolveID(r, formValue(form, "id"))
	} else {
		var body fileUpdateBody
		if err := parseJSON(w, r, &body); err != nil {
			handleError(w, h.logger, err)
			return
		}

		var err error
		req, err = jsonPatch(&body)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		id = resolveID(r, body.ID)
	}

	file, err := h.fileService.UpdateFile(r.Context(), id, req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile removes a file's history, metadata and blob
// DELETE /file
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var body fileIDBody
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}

	id := resolveID(r, body.ID)
	if err := h.fileService.DeleteFile(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, deletedResponse{ID: id, Deleted: true})
}

// RecordView increments a file's view counter
// POST /file/view
func (h *FileHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	var body fileIDBody
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}

	file, err := h.fileService.RecordView(r.Context(), resolveID(r, body.ID))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

func (h *FileHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: expected multipart/form-data", domain.ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return r.MultipartForm, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// formBlob returns the uploaded "file" part, or nil when the part is absent
func formBlob(r *http.Request) (*docsysSvc.UploadedFile, func(), error) {
	part, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: file: %v", domain.ErrValidation, err)
	}

	blob := &docsysSvc.UploadedFile{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  part,
	}
	return blob, func() { part.Close() }, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// formOptional distinguishes an absent field from an empty one
func formOptional(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func formInt(form *multipart.Form, key string) (int64, error) {
	raw := strings.TrimSpace(formValue(form, key))
	if raw == "" {
		return 0, nil
	}
	return parseInt(key, raw)
}

func parseInt(key, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, key)
	}
	return v, nil
}

func multipartPatch(form *multipart.Form, blob *docsysSvc.UploadedFile) (*docsysSvc.UpdateFileRequest, error) {
	req := &docsysSvc.UpdateFileRequest{
		Title:       formOptional(form, "title"),
		Description: formOptional(form, "description"),
		Blob:        blob,
	}
	if raw := formOptional(form, "category_id"); raw != nil {
		id, err := parseInt("category_id", strings.TrimSpace(*raw))
		if err != nil {
			return nil, err
		}
		req.CategoryID = &id
	}
	return req, nil
}

func jsonPatch(body *fileUpdateBody) (*docsysSvc.UpdateFileRequest, error) {
	req := &docsysSvc.UpdateFileRequest{
		Title:       body.Title.Patch(),
		Description: body.Description.Patch(),
	}
	if body.CategoryID != nil {
		id, err := parseInt("category_id", body.CategoryID.String())
		if err != nil {
			return nil, err
		}
		req.CategoryID = &id
	}
	return req, nil
}
