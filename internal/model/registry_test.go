package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestScanDirFiltersArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "best.onnx", "weights")
	writeFile(t, dir, "tower_crane.pt", "weights")
	writeFile(t, dir, "notes.txt", "not a model")
	writeFile(t, dir, "README.md", "docs")
	if err := os.Mkdir(filepath.Join(dir, "old.onnx"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	recs, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}

	best, ok := recs["best.onnx"]
	if !ok {
		t.Fatal("best.onnx missing from catalogue")
	}
	if best.Path != filepath.Join(dir, "best.onnx") {
		t.Fatalf("path = %q", best.Path)
	}
	if best.SizeBytes != int64(len("weights")) {
		t.Fatalf("size = %d", best.SizeBytes)
	}
	if best.LastModified.IsZero() {
		t.Fatal("mtime not recorded")
	}
}

func TestScanDirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "best.onnx", "weights")
	writeFile(t, dir, "other.weights", "more weights")

	first, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("scans differ with no filesystem change (-first +second):\n%s", diff)
	}
}

func TestScanDirMissingDirectory(t *testing.T) {
	_, err := ScanDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestIsArtifact(t *testing.T) {
	for _, name := range []string{"a.onnx", "b.pt", "c.pth", "d.weights", "E.ONNX"} {
		if !IsArtifact(name) {
			t.Fatalf("%s should be an artifact", name)
		}
	}
	for _, name := range []string{"a.txt", "b", "c.onnx.bak"} {
		if IsArtifact(name) {
			t.Fatalf("%s should not be an artifact", name)
		}
	}
}
