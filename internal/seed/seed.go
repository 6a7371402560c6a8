// Package seed loads a YAML description of categories, documents and PDF files
// and creates them through the services, so every seeded entity gets the same
// directory, blob and history bookkeeping as one created over HTTP.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysSvc "folio/internal/domain/services/docsystem"
	service "folio/internal/service/docsystem"

	"gopkg.in/yaml.v3"
)

// Plan is the seed file layout
type Plan struct {
	Categories []string       `yaml:"categories"`
	Documents  []DocumentSeed `yaml:"documents"`
}

// DocumentSeed is one document with the files to upload into it
type DocumentSeed struct {
	Title string     `yaml:"title"`
	Files []FileSeed `yaml:"files"`
}

// FileSeed is one PDF upload. Path is relative to the seed file.
type FileSeed struct {
	Title       string `yaml:"title"`
	Category    string `yaml:"category"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
	Path        string `yaml:"path"`
}

// Result counts what a seed run created
type Result struct {
	Categories int `json:"categories" yaml:"categories"`
	Documents  int `json:"documents" yaml:"documents"`
	Files      int `json:"files" yaml:"files"`
}

// Load parses a seed plan
func Load(r io.Reader) (*Plan, error) {
	var plan Plan
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&plan); err != nil {
		if errors.Is(err, io.EOF) {
			return &plan, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &plan, nil
}

// LoadFile parses the seed plan at path
func LoadFile(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Seeder applies plans through the domain services
type Seeder struct {
	categories docsysSvc.CategoryService
	documents  docsysSvc.DocumentService
	files      docsysSvc.FileService
	logger     *slog.Logger
}

// NewSeeder creates a seeder
func NewSeeder(
	categories docsysSvc.CategoryService,
	documents docsysSvc.DocumentService,
	files docsysSvc.FileService,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		categories: categories,
		documents:  documents,
		files:      files,
		logger:     logger,
	}
}

// Apply creates everything in the plan. Categories that already exist are
// reused; documents are always created new. baseDir resolves relative file paths.
func (s *Seeder) Apply(ctx context.Context, plan *Plan, baseDir string) (*Result, error) {
	result := &Result{}

	categoryIDs, err := s.existingCategories(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range plan.Categories {
		id, created, err := s.ensureCategory(ctx, categoryIDs, name)
		if err != nil {
			return result, err
		}
		categoryIDs[service.NormalizeCategoryName(name)] = id
		if created {
			result.Categories++
		}
	}

	for _, docSeed := range plan.Documents {
		doc, err := s.documents.CreateDocument(ctx, &docsysSvc.CreateDocumentRequest{Title: docSeed.Title})
		if err != nil {
			return result, fmt.Errorf("document %q: %w", docSeed.Title, err)
		}
		result.Documents++

		for _, fileSeed := range docSeed.Files {
			categoryID, created, err := s.ensureCategory(ctx, categoryIDs, fileSeed.Category)
			if err != nil {
				return result, err
			}
			categoryIDs[service.NormalizeCategoryName(fileSeed.Category)] = categoryID
			if created {
				result.Categories++
			}

			if err := s.upload(ctx, doc.ID, categoryID, fileSeed, baseDir); err != nil {
				return result, fmt.Errorf("file %q in %q: %w", fileSeed.Title, docSeed.Title, err)
			}
			result.Files++
		}
	}

	s.logger.Info("seed applied",
		"categories", result.Categories,
		"documents", result.Documents,
		"files", result.Files,
	)
	return result, nil
}

func (s *Seeder) existingCategories(ctx context.Context) (map[string]int64, error) {
	list, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(list))
	for _, c := range list {
		ids[c.Name] = c.ID
	}
	return ids, nil
}

func (s *Seeder) ensureCategory(ctx context.Context, known map[string]int64, name string) (int64, bool, error) {
	if id, ok := known[service.NormalizeCategoryName(name)]; ok {
		return id, false, nil
	}

	category, err := s.categories.CreateCategory(ctx, &docsysSvc.CreateCategoryRequest{Name: name})
	if err != nil {
		return 0, false, fmt.Errorf("category %q: %w", name, err)
	}
	return category.ID, true, nil
}

func (s *Seeder) upload(ctx context.Context, documentID string, categoryID int64, fileSeed FileSeed, baseDir string) error {
	path := fileSeed.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	defer f.Close()

	_, err = s.files.UploadFile(ctx, &docsysSvc.UploadFileRequest{
		Title:       fileSeed.Title,
		CategoryID:  categoryID,
		Author:      fileSeed.Author,
		Description: fileSeed.Description,
		DocumentID:  documentID,
		Blob: &docsysSvc.UploadedFile{
			Filename: filepath.Base(path),
			MimeType: models.PDFMimeType,
			Content:  f,
		},
	})
	return err
}
