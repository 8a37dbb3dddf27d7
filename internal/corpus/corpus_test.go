package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates a file under dir with the given name and content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestReadDir_OrderedByName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "002_second.txt", "second article")
	writeFile(t, dir, "001_first.txt", "first article")
	writeFile(t, dir, "notes.md", "ignored (not a txt file)")

	docs, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].SourceID != "001_first.txt" || docs[1].SourceID != "002_second.txt" {
		t.Errorf("unexpected order: %q, %q", docs[0].SourceID, docs[1].SourceID)
	}
	if docs[0].Text != "first article" {
		t.Errorf("unexpected text: %q", docs[0].Text)
	}
}

func TestReadDir_SkipsEmptyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "")
	writeFile(t, dir, "real.txt", "content")

	docs, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(docs) != 1 || docs[0].SourceID != "real.txt" {
		t.Errorf("expected only the non-empty file, got %+v", docs)
	}
}

func TestReadDir_EmptyDirIsAnError(t *testing.T) {
	t.Parallel()

	if _, err := ReadDir(t.TempDir()); err == nil {
		t.Fatal("expected error for directory with no txt files")
	}
}
