package docsystem

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestReconcile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.mustCreateDocument(t, "Thesis")
	category := env.mustCreateCategory(t, "thesis")
	kept := env.mustUpload(t, doc.ID, category.ID, "Chapter1")
	lost := env.mustUpload(t, doc.ID, category.ID, "Chapter2")
	bare := env.mustCreateDocument(t, "Bare")

	report, err := env.reconcile.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if !report.Clean() {
		t.Fatalf("Scan() on consistent store = %+v, want clean", report)
	}

	// Break things: a blob without a row, a row without a blob,
	// a directory without a document and a document without a directory.
	if _, err := env.blobs.CreateBlob(doc.ID, "stray", bytes.NewReader(minimalPDF)); err != nil {
		t.Fatal(err)
	}
	if err := env.blobs.RemoveBlob(doc.ID, lost.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.blobs.CreateDocumentDir("leftover"); err != nil {
		t.Fatal(err)
	}
	if err := env.blobs.RemoveDocumentDir(bare.ID); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * OrphanGracePeriod)
	for _, path := range []string{env.blobs.BlobPath(doc.ID, "stray"), env.blobs.DocumentDir("leftover")} {
		if err := env.fs.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}
	}
	// Temp files from an interrupted replace are not blobs
	if err := afero.WriteFile(env.fs, filepath.Join(env.blobs.DocumentDir(doc.ID), "."+kept.ID+"-1.tmp"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	report, err = env.reconcile.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if len(report.OrphanBlobs) != 1 || report.OrphanBlobs[0].FileID != "stray" {
		t.Errorf("OrphanBlobs = %v, want [stray]", report.OrphanBlobs)
	}
	if len(report.MissingBlobs) != 1 || report.MissingBlobs[0].FileID != lost.ID {
		t.Errorf("MissingBlobs = %v, want [%s]", report.MissingBlobs, lost.ID)
	}
	if len(report.OrphanDirectories) != 1 || report.OrphanDirectories[0] != "leftover" {
		t.Errorf("OrphanDirectories = %v, want [leftover]", report.OrphanDirectories)
	}
	if len(report.MissingDirectories) != 1 || report.MissingDirectories[0] != bare.ID {
		t.Errorf("MissingDirectories = %v, want [%s]", report.MissingDirectories, bare.ID)
	}

	removed, err := env.reconcile.Fix(ctx, report)
	if err != nil {
		t.Fatalf("Fix() failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Fix() removed %d entries, want 2", removed)
	}

	after, err := env.reconcile.Scan(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(after.OrphanBlobs) != 0 || len(after.OrphanDirectories) != 0 {
		t.Errorf("orphans survived Fix(): %+v", after)
	}
	if len(after.MissingBlobs) != 1 || len(after.MissingDirectories) != 1 {
		t.Errorf("Fix() must not touch rows: %+v", after)
	}
	if !fileExists(t, env, env.blobs.BlobPath(doc.ID, kept.ID)) {
		t.Error("Fix() removed a referenced blob")
	}
}

func TestReconcileFixSkipsRecentOrphans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.mustCreateDocument(t, "Thesis")

	// A create in flight: directory and blob are on disk, rows not committed yet
	if err := env.blobs.CreateDocumentDir("pending"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.blobs.CreateBlob(doc.ID, "uploading", bytes.NewReader(minimalPDF)); err != nil {
		t.Fatal(err)
	}

	report, err := env.reconcile.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if len(report.OrphanBlobs) != 1 || len(report.OrphanDirectories) != 1 {
		t.Fatalf("Scan() = %+v, want one orphan blob and one orphan directory", report)
	}

	removed, err := env.reconcile.Fix(ctx, report)
	if err != nil {
		t.Fatalf("Fix() failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Fix() removed %d entries, want 0", removed)
	}
	if !fileExists(t, env, env.blobs.BlobPath(doc.ID, "uploading")) {
		t.Error("Fix() removed a blob younger than the grace period")
	}
	exists, err := env.blobs.DocumentDirExists("pending")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("Fix() removed a directory younger than the grace period")
	}

	// An orphan that vanished between Scan and Fix is not an error
	if err := env.blobs.RemoveDocumentDir("pending"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.reconcile.Fix(ctx, report); err != nil {
		t.Errorf("Fix() after orphan vanished: %v", err)
	}
}
