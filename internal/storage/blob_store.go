package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrDirectoryExists is returned when a document directory is created twice.
var ErrDirectoryExists = errors.New("document directory already exists")

// BlobStore owns the on-disk tree <root>/<documentID>/<fileID>.pdf.
// All paths are derived from ids, never from titles.
type BlobStore struct {
	fs   afero.Fs
	root string
}

// NewBlobStore creates a blob store rooted at root on the given filesystem
func NewBlobStore(fsys afero.Fs, root string) *BlobStore {
	return &BlobStore{fs: fsys, root: root}
}

// NewOSBlobStore creates a blob store on the real filesystem, creating root if needed
func NewOSBlobStore(root string) (*BlobStore, error) {
	fsys := afero.NewOsFs()
	if err := fsys.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return NewBlobStore(fsys, root), nil
}

// Root returns the storage root
func (s *BlobStore) Root() string {
	return s.root
}

// DocumentDir resolves a document's directory
func (s *BlobStore) DocumentDir(documentID string) string {
	return DocumentDir(s.root, documentID)
}

// BlobPath resolves a file's blob path
func (s *BlobStore) BlobPath(documentID, fileID string) string {
	return FileBlobPath(s.root, documentID, fileID)
}

// CreateDocumentDir creates a new document directory.
// Returns ErrDirectoryExists if it is already there.
func (s *BlobStore) CreateDocumentDir(documentID string) error {
	dir := s.DocumentDir(documentID)

	exists, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return fmt.Errorf("stat document directory: %w", err)
	}
	if exists {
		return ErrDirectoryExists
	}

	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}
	return nil
}

// DocumentDirExists reports whether a document directory is present
func (s *BlobStore) DocumentDirExists(documentID string) (bool, error) {
	return afero.DirExists(s.fs, s.DocumentDir(documentID))
}

// DocumentDirModTime returns the modification time of a document directory
func (s *BlobStore) DocumentDirModTime(documentID string) (time.Time, error) {
	return s.modTime(s.DocumentDir(documentID))
}

// BlobModTime returns the modification time of a blob
func (s *BlobStore) BlobModTime(documentID, fileID string) (time.Time, error) {
	return s.modTime(s.BlobPath(documentID, fileID))
}

func (s *BlobStore) modTime(path string) (time.Time, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// RemoveDocumentDir removes a document directory and everything below it
func (s *BlobStore) RemoveDocumentDir(documentID string) error {
	return s.fs.RemoveAll(s.DocumentDir(documentID))
}

// CreateBlob writes a blob for a fresh file id. It never overwrites.
func (s *BlobStore) CreateBlob(documentID, fileID string, r io.Reader) (int64, error) {
	path := s.BlobPath(documentID, fileID)

	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, fmt.Errorf("create blob: %w", err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(path)
		return 0, fmt.Errorf("write blob: %w", err)
	}

	return n, nil
}

// ReplaceBlob overwrites an existing blob in place: the new content is written
// next to it and renamed over it, so readers see either the old or new bytes.
func (s *BlobStore) ReplaceBlob(documentID, fileID string, r io.Reader) (int64, error) {
	path := s.BlobPath(documentID, fileID)

	tmp, err := afero.TempFile(s.fs, s.DocumentDir(documentID), "."+fileID+"-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(tmpName)
		return 0, fmt.Errorf("write temp blob: %w", err)
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return 0, fmt.Errorf("replace blob: %w", err)
	}

	return n, nil
}

// BlobExists reports whether a blob is present as a regular file
func (s *BlobStore) BlobExists(documentID, fileID string) (bool, error) {
	info, err := s.fs.Stat(s.BlobPath(documentID, fileID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// OpenBlob opens a blob for reading
func (s *BlobStore) OpenBlob(documentID, fileID string) (afero.File, error) {
	return s.fs.Open(s.BlobPath(documentID, fileID))
}

// RemoveBlob unlinks a blob
func (s *BlobStore) RemoveBlob(documentID, fileID string) error {
	return s.fs.Remove(s.BlobPath(documentID, fileID))
}

// ListDocumentDirs returns the names of all directories under the root, sorted
func (s *BlobStore) ListDocumentDirs() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

// ListBlobIDs returns the file ids of all blobs in a document directory, sorted.
// Temp files left by an interrupted ReplaceBlob are skipped.
func (s *BlobStore) ListBlobIDs(documentID string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.DocumentDir(documentID))
	if err != nil {
		return nil, fmt.Errorf("read document directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Mode().IsRegular() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, BlobExtension) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, BlobExtension))
	}
	sort.Strings(ids)
	return ids, nil
}
