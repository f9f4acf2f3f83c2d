package inference

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/image-inference/backend/internal/models"
	"github.com/image-inference/backend/internal/naming"
)

// defaultLabels covers the common COCO-style classes used when no
// label file is configured.
var defaultLabels = []string{
	"person", "bicycle", "car", "motorcycle", "airplane",
	"bus", "train", "truck", "boat", "dog", "cat", "bird",
}

// labelFile is the YAML layout of a class label file, matching the
// names list of a YOLO data file.
type labelFile struct {
	Names []string `yaml:"names"`
}

// StubEngine is a deterministic stand-in for a real detector. It
// derives pseudo-detections from a hash of the image bytes and writes
// the visualization as an unannotated copy of the original, named so
// the results index correlates the pair.
type StubEngine struct {
	weightsPath string
	labels      []string
}

// NewStubEngine loads class labels from labelsPath (YAML, names list).
// A missing label file falls back to the built-in defaults; a present
// but malformed one is an error.
func NewStubEngine(weightsPath, labelsPath string) (*StubEngine, error) {
	labels := defaultLabels
	if labelsPath != "" {
		data, err := os.ReadFile(labelsPath)
		switch {
		case os.IsNotExist(err):
			// keep defaults
		case err != nil:
			return nil, fmt.Errorf("reading label file: %w", err)
		default:
			var lf labelFile
			if err := yaml.Unmarshal(data, &lf); err != nil {
				return nil, fmt.Errorf("parsing label file: %w", err)
			}
			if len(lf.Names) > 0 {
				labels = lf.Names
			}
		}
	}

	return &StubEngine{weightsPath: weightsPath, labels: labels}, nil
}

// Ready reports whether the configured weights file exists.
func (e *StubEngine) Ready() bool {
	if e.weightsPath == "" {
		return false
	}
	_, err := os.Stat(e.weightsPath)
	return err == nil
}

// Detect produces deterministic pseudo-detections for the image and
// writes the correlated visualization file.
func (e *StubEngine) Detect(ctx context.Context, imagePath, visDir string) (*models.InferenceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	detections := e.pseudoDetections(data, cfg.Width, cfg.Height)

	info, err := os.Stat(imagePath)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	key, display := naming.DecodeUpload(filepath.Base(imagePath), info.ModTime())
	visPath := filepath.Join(visDir, naming.VisualizationName(display, key))
	if err := os.WriteFile(visPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing visualization: %w", err)
	}

	result := &models.InferenceResult{
		Detections:        detections,
		DetectionCount:    len(detections),
		VisualizationPath: visPath,
		ElapsedMs:         time.Since(start).Milliseconds(),
	}
	if len(detections) > 0 {
		top := detections[0]
		result.ClassID = &top.ClassID
		result.ClassName = top.ClassName
		result.Confidence = top.Confidence
	}
	return result, nil
}

// pseudoDetections derives a stable detection set from the image
// content so repeated runs on the same file agree.
func (e *StubEngine) pseudoDetections(data []byte, width, height int) []models.Detection {
	h := fnv.New64a()
	h.Write(data)
	seed := h.Sum64()

	n := int(seed%3) + 1
	detections := make([]models.Detection, 0, n)
	for i := 0; i < n; i++ {
		s := seed >> (uint(i) * 7)
		classID := int(s % uint64(len(e.labels)))
		conf := 0.5 + float64(s%50)/100.0

		w := float64(width)
		ht := float64(height)
		x1 := w * float64(s%30) / 100.0
		y1 := ht * float64((s>>3)%30) / 100.0

		detections = append(detections, models.Detection{
			ClassID:    classID,
			ClassName:  e.labels[classID],
			Confidence: conf,
			Box: models.BoundingBox{
				X1: x1,
				Y1: y1,
				X2: x1 + w/2,
				Y2: y1 + ht/2,
			},
		})
	}
	return detections
}
