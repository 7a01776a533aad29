package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Record describes one model artifact found on disk. Records are rebuilt
// on every scan; a scan never mutates a previous catalogue in place.
type Record struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// artifactExts is the recognized set of model weight file extensions.
var artifactExts = map[string]bool{
	".onnx":    true,
	".pt":      true,
	".pth":     true,
	".weights": true,
}

// IsArtifact reports whether the file name has a recognized model
// weight extension.
func IsArtifact(name string) bool {
	return artifactExts[strings.ToLower(filepath.Ext(name))]
}

// ScanDir lists model artifacts in dir keyed by file name. Only file size
// and mtime are read; artifact contents are never parsed. The returned
// map is freshly allocated.
func ScanDir(dir string) (map[string]Record, error) {
	fis, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read model dir %s: %w", dir, err)
	}

	out := make(map[string]Record)
	for _, fi := range fis {
		if fi.IsDir() || !IsArtifact(fi.Name()) {
			continue
		}
		info, err := fi.Info()
		if err != nil {
			// Raced with a delete; skip the entry.
			continue
		}
		out[fi.Name()] = Record{
			Name:         fi.Name(),
			Path:         filepath.Join(dir, fi.Name()),
			SizeBytes:    info.Size(),
			LastModified: info.ModTime(),
		}
	}
	return out, nil
}
