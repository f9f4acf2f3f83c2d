// Package inference defines the contract to the object-detection
// engine and ships a stub implementation for development and tests.
// The engine is a collaborator with a fixed contract: given an image
// path and a visualization directory, it returns a detection summary
// and writes one annotated image named by the artifact naming scheme.
package inference

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Registered formats for upload content validation.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/image-inference/backend/internal/models"
)

// Engine runs object detection on one stored image.
type Engine interface {
	// Detect analyzes the image at imagePath and writes one annotated
	// visualization into visDir, correlated to the upload by its
	// timestamp key.
	Detect(ctx context.Context, imagePath, visDir string) (*models.InferenceResult, error)

	// Ready reports whether model weights are available.
	Ready() bool
}

// ValidateImage checks that data decodes as a supported image format.
// Only the header is inspected; a decodable header is enough to accept
// the upload.
func ValidateImage(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("not a valid image: %w", err)
	}
	return nil
}
