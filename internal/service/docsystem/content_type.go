package docsystem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysSvc "folio/internal/domain/services/docsystem"
)

// sniffLen is how far into an upload the PDF header may start. Readers
// accept junk such as a BOM or CRLF ahead of it.
const sniffLen = 1024

var pdfMagic = []byte("%PDF-")

// checkPDF verifies the declared media type and the leading bytes of an
// upload. It returns a reader that still yields the full content.
func checkPDF(blob *docsysSvc.UploadedFile) (io.Reader, error) {
	if blob == nil || blob.Content == nil {
		return nil, fmt.Errorf("%w: file is required", domain.ErrValidation)
	}

	declared, _, err := mime.ParseMediaType(blob.MimeType)
	if err != nil || declared != models.PDFMimeType {
		return nil, fmt.Errorf("%w: got %q, want %s", domain.ErrUnsupportedMediaType, blob.MimeType, models.PDFMimeType)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(blob.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	if !bytes.Contains(head, pdfMagic) {
		return nil, fmt.Errorf("%w: no PDF header in the first %d bytes, content looks like %s",
			domain.ErrUnsupportedMediaType, sniffLen, http.DetectContentType(head))
	}

	return io.MultiReader(bytes.NewReader(head), blob.Content), nil
}
