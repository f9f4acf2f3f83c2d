// tree.go - Artifact tree seeding helpers for tests
package testutil

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SeedArtifact writes one artifact file at
// {root}/{kind}/{category}/{name} and returns its path.
func SeedArtifact(t *testing.T, root, kind, category, name, content string) string {
	t.Helper()

	dir := filepath.Join(root, kind, category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// SeedResultPair seeds a correlated upload/visualization pair for one
// (category, timestamp key) and returns both paths.
func SeedResultPair(t *testing.T, root, category, ts, name string) (uploadPath, visPath string) {
	t.Helper()

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	uploadPath = SeedArtifact(t, root, "uploads", category, ts+"_"+name, "original-image-bytes")
	visPath = SeedArtifact(t, root, "visualizations", category, "vis_"+stem+"_"+ts+ext, "annotated-image-bytes")
	return uploadPath, visPath
}

// TinyPNG returns the encoded bytes of a 2x2 PNG, small enough for
// upload tests yet decodable by image.DecodeConfig.
func TinyPNG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}
