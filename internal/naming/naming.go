// Package naming encodes and decodes the filename scheme that ties a
// stored artifact to its logical identity (category, timestamp key,
// display name). The timestamp key is the correlation key between an
// uploaded image and the visualization the inference engine writes for
// it; both sides must agree on it byte for byte.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// VisPrefix marks a file under visualizations/ as an inference output.
// Files without it are ignored by the index builder.
const VisPrefix = "vis_"

// UploadName encodes a single-upload filename: {timestamp}_{name}.
func UploadName(ts int64, original string) string {
	return fmt.Sprintf("%d_%s", ts, original)
}

// BatchUploadName encodes a batch-upload filename with a 1-based
// sequence index: {timestamp}_{index}_{name}. The index keeps files of
// one batch distinct when they share a timestamp second.
func BatchUploadName(ts int64, index int, original string) string {
	return fmt.Sprintf("%d_%d_%s", ts, index, original)
}

// DecodeUpload splits an upload filename into its timestamp key and
// display name. Everything after the first underscore is the display
// name verbatim; for batch uploads this includes the embedded sequence
// index, so exact name recovery is only guaranteed for single uploads.
// A filename without an underscore keeps its full name and falls back
// to the file's modification time for the key.
func DecodeUpload(filename string, modTime time.Time) (key, display string) {
	if i := strings.Index(filename, "_"); i >= 0 {
		return filename[:i], filename[i+1:]
	}
	return fmt.Sprintf("%d", modTime.Unix()), filename
}

// VisualizationName encodes a visualization filename from the upload's
// display name and timestamp key: vis_{stem}_{timestamp}{ext}.
func VisualizationName(display, key string) string {
	ext := filepath.Ext(display)
	stem := strings.TrimSuffix(display, ext)
	return VisPrefix + stem + "_" + key + ext
}

// DecodeVisualization extracts the timestamp key from a visualization
// filename: the last underscore-delimited token of the stem. A stem
// without an underscore falls back to the file's modification time.
func DecodeVisualization(filename string, modTime time.Time) (key string) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if i := strings.LastIndex(stem, "_"); i >= 0 {
		return stem[i+1:]
	}
	return fmt.Sprintf("%d", modTime.Unix())
}

// IsVisualization reports whether a filename carries the
// visualization prefix marker.
func IsVisualization(filename string) bool {
	return strings.HasPrefix(filename, VisPrefix)
}
