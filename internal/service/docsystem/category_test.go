package docsystem

import (
	"context"
	"errors"
	"testing"

	"folio/internal/domain"
	docsysSvc "folio/internal/domain/services/docsystem"
)

func TestCreateCategory_Normalization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.mustCreateCategory(t, "  research  ")
	if created.Name != "RESEARCH" {
		t.Errorf("Name = %q, want RESEARCH", created.Name)
	}

	_, err := env.categories.CreateCategory(ctx, &docsysSvc.CreateCategoryRequest{Name: "RESEARCH"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second CreateCategory() error = %v, want *ConflictError", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("ConflictError should match ErrConflict")
	}

	for _, name := range []string{"", "   "} {
		if _, err := env.categories.CreateCategory(ctx, &docsysSvc.CreateCategoryRequest{Name: name}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("CreateCategory(%q) error = %v, want ErrValidation", name, err)
		}
	}

	list, err := env.categories.ListCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("ListCategories() = %v, want one category", list)
	}
}

func TestDeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	used := env.mustCreateCategory(t, "thesis")
	unused := env.mustCreateCategory(t, "misc")
	doc := env.mustCreateDocument(t, "Thesis")
	env.mustUpload(t, doc.ID, used.ID, "Chapter1")

	if err := env.categories.DeleteCategory(ctx, used.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("DeleteCategory(used) error = %v, want ErrConflict", err)
	}
	if err := env.categories.DeleteCategory(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteCategory(404) error = %v, want ErrNotFound", err)
	}
	if err := env.categories.DeleteCategory(ctx, unused.ID); err != nil {
		t.Fatalf("DeleteCategory(unused) failed: %v", err)
	}

	list, err := env.categories.ListCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != used.ID {
		t.Errorf("ListCategories() = %v, want only %s", list, used.Name)
	}
}

func TestParseCategoryID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "7", want: 7},
		{raw: " 12 ", want: 12},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "1.5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCategoryID(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("ParseCategoryID(%q) error = %v, want ErrValidation", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseCategoryID(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
		}
	}
}
