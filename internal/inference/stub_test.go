// stub_test.go - Tests for the stub detection engine
package inference

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/image-inference/backend/internal/testutil"
)

func writeUpload(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, testutil.TinyPNG(t), 0644); err != nil {
		t.Fatalf("Failed to write upload: %v", err)
	}
	return path
}

func TestStubEngine_Detect(t *testing.T) {
	engine, err := NewStubEngine("", "")
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	uploadDir := t.TempDir()
	visDir := t.TempDir()
	imagePath := writeUpload(t, uploadDir, "1000_dog.png")

	result, err := engine.Detect(context.Background(), imagePath, visDir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.DetectionCount < 1 {
		t.Error("Expected at least one detection")
	}
	if result.ClassID == nil {
		t.Error("Expected top class to be set")
	}

	// The visualization must carry the upload's timestamp key so the
	// results index correlates the pair.
	wantVis := filepath.Join(visDir, "vis_dog_1000.png")
	if result.VisualizationPath != wantVis {
		t.Errorf("Expected visualization %s, got %s", wantVis, result.VisualizationPath)
	}
	if _, err := os.Stat(wantVis); err != nil {
		t.Errorf("Expected visualization file to exist: %v", err)
	}
}

func TestStubEngine_Deterministic(t *testing.T) {
	engine, err := NewStubEngine("", "")
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	uploadDir := t.TempDir()
	imagePath := writeUpload(t, uploadDir, "1000_dog.png")

	first, err := engine.Detect(context.Background(), imagePath, t.TempDir())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	second, err := engine.Detect(context.Background(), imagePath, t.TempDir())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if *first.ClassID != *second.ClassID || first.DetectionCount != second.DetectionCount {
		t.Error("Expected identical detections for identical input")
	}
}

func TestStubEngine_Ready(t *testing.T) {
	t.Run("missing weights", func(t *testing.T) {
		engine, err := NewStubEngine(filepath.Join(t.TempDir(), "missing.pt"), "")
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		if engine.Ready() {
			t.Error("Expected not ready without weights file")
		}
	})

	t.Run("present weights", func(t *testing.T) {
		weights := filepath.Join(t.TempDir(), "model.pt")
		if err := os.WriteFile(weights, []byte("w"), 0644); err != nil {
			t.Fatalf("Failed to write weights: %v", err)
		}
		engine, err := NewStubEngine(weights, "")
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		if !engine.Ready() {
			t.Error("Expected ready with weights file")
		}
	})
}

func TestStubEngine_Labels(t *testing.T) {
	t.Run("loads names from yaml", func(t *testing.T) {
		labels := filepath.Join(t.TempDir(), "labels.yaml")
		content := "names:\n  - widget\n  - gadget\n"
		if err := os.WriteFile(labels, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write labels: %v", err)
		}

		engine, err := NewStubEngine("", labels)
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}

		imagePath := writeUpload(t, t.TempDir(), "1000_a.png")
		result, err := engine.Detect(context.Background(), imagePath, t.TempDir())
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if result.ClassName != "widget" && result.ClassName != "gadget" {
			t.Errorf("Expected class from label file, got %s", result.ClassName)
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		labels := filepath.Join(t.TempDir(), "labels.yaml")
		if err := os.WriteFile(labels, []byte(":\n\t- broken"), 0644); err != nil {
			t.Fatalf("Failed to write labels: %v", err)
		}
		if _, err := NewStubEngine("", labels); err == nil {
			t.Error("Expected error for malformed label file")
		}
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		engine, err := NewStubEngine("", filepath.Join(t.TempDir(), "none.yaml"))
		if err != nil {
			t.Fatalf("Expected fallback, got error: %v", err)
		}
		if engine == nil {
			t.Fatal("Expected engine")
		}
	})
}

func TestValidateImage(t *testing.T) {
	t.Run("accepts png", func(t *testing.T) {
		if err := ValidateImage(testutil.TinyPNG(t)); err != nil {
			t.Errorf("Expected valid image, got %v", err)
		}
	})

	t.Run("rejects non-image bytes", func(t *testing.T) {
		if err := ValidateImage([]byte("definitely not an image")); err == nil {
			t.Error("Expected error for non-image bytes")
		}
	})
}
