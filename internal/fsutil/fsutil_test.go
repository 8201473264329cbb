package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.solved")
	if FileExists(path) {
		t.Fatal("file should not exist yet")
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Fatal("file should exist")
	}
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	b := filepath.Join(dir, "b.wcs")
	if err := os.WriteFile(b, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got := FirstExisting("", filepath.Join(dir, "a.wcs"), b)
	if got != b {
		t.Fatalf("FirstExisting = %q, want %q", got, b)
	}
	if got := FirstExisting(filepath.Join(dir, "missing")); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestIsCandidateInput(t *testing.T) {
	for _, p := range []string{"sky.png", "sky.FITS", "stars.xyls", "f.axy"} {
		if !IsCandidateInput(p) {
			t.Errorf("%s should be a candidate input", p)
		}
	}
	for _, p := range []string{"notes.txt", "sky.solved", "field.wcs"} {
		if IsCandidateInput(p) {
			t.Errorf("%s should not be a candidate input", p)
		}
	}
}
