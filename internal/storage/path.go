package storage

import "path/filepath"

// BlobExtension is fixed; the uploaded filename never reaches the disk.
const BlobExtension = ".pdf"

// DocumentDir returns <root>/<documentID>.
func DocumentDir(root, documentID string) string {
	return filepath.Join(root, documentID)
}

// FileBlobPath returns <root>/<documentID>/<fileID>.pdf.
func FileBlobPath(root, documentID, fileID string) string {
	return filepath.Join(root, documentID, fileID+BlobExtension)
}
