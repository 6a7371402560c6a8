package docsystem

import (
	"context"
	"errors"
	"testing"

	"folio/internal/domain"
)

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.mustCreateDocument(t, "Thesis")
	thesis := env.mustCreateCategory(t, "thesis")
	report := env.mustCreateCategory(t, "report")
	chapter := env.mustUpload(t, doc.ID, thesis.ID, "Chapter1")
	summary := env.mustUpload(t, doc.ID, report.ID, "Summary")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title", "Chapter", []string{chapter.ID}},
		{"category name", "REPORT", []string{summary.ID}},
		{"author matches both", "Ann", []string{chapter.ID, summary.ID}},
		{"description", "draft of Summary", []string{summary.ID}},
		{"case sensitive", "chapter", nil},
		{"no match", "nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := env.search.Search(ctx, tt.query)
			if err != nil {
				t.Fatalf("Search(%q) failed: %v", tt.query, err)
			}
			got := map[string]bool{}
			for _, r := range results {
				if got[r.ID] {
					t.Errorf("file %s returned twice", r.ID)
				}
				got[r.ID] = true
				if r.ModifiedAt == nil {
					t.Errorf("file %s has no modified_at", r.ID)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %d results, want %d", tt.query, len(got), len(tt.want))
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("Search(%q) missing %s", tt.query, id)
				}
			}
		})
	}

	if _, err := env.search.Search(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Search(\"\") error = %v, want ErrValidation", err)
	}
}

func TestSearch_LatestModification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.mustCreateDocument(t, "Thesis")
	category := env.mustCreateCategory(t, "thesis")
	file := env.mustUpload(t, doc.ID, category.ID, "Chapter1")
	updated, err := env.files.UpdateFile(ctx, file.ID, updateTitle("Chapter1b"))
	if err != nil {
		t.Fatal(err)
	}

	results, err := env.search.Search(ctx, "Chapter1b")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() = %d results, want 1", len(results))
	}
	if !results[0].ModifiedAt.Equal(updated.History[0]) {
		t.Errorf("ModifiedAt = %v, want newest history entry %v", results[0].ModifiedAt, updated.History[0])
	}
}
