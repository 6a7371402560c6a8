package docsystem

import "io"

// UploadedFile is a blob delivered by the multipart layer
type UploadedFile struct {
	Filename string // original client filename, informational only
	MimeType string // declared content type
	Content  io.Reader
}
