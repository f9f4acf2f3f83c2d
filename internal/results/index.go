package results

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/image-inference/backend/internal/models"
	"github.com/image-inference/backend/internal/naming"
)

// List reconstructs the result index from the current directory state.
// Upload and visualization artifacts are joined on their timestamp key
// per category; a record is emitted for every key present on at least
// one side. Unreadable category directories read as empty; only an
// inaccessible storage root fails the whole call.
func (r *FSRepository) List(category string) ([]models.ResultRecord, models.ResultSummary, error) {
	var unlock func()
	if category == "" {
		unlock = r.locks.lockAll()
	} else {
		unlock = r.locks.lockCategory(category, false)
	}
	defer unlock()

	if _, err := os.Stat(r.root); err != nil {
		return nil, models.ResultSummary{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	records := make([]models.ResultRecord, 0)
	for _, cat := range r.categoryNames(category) {
		uploads := r.scanUploads(cat)
		visualizations := r.scanVisualizations(cat)

		keys := make(map[string]struct{}, len(uploads)+len(visualizations))
		for k := range uploads {
			keys[k] = struct{}{}
		}
		for k := range visualizations {
			keys[k] = struct{}{}
		}

		for key := range keys {
			records = append(records, models.ResultRecord{
				ID:            cat + "_" + key,
				Category:      cat,
				Timestamp:     key,
				Upload:        uploads[key],
				Visualization: visualizations[key],
			})
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if c := compareTimestampKeys(records[i].Timestamp, records[j].Timestamp); c != 0 {
			return c > 0
		}
		return records[i].ID > records[j].ID
	})

	return records, summarize(records), nil
}

// categoryNames returns the scope's category set: the union of
// subdirectory names on both sides, or just the requested one.
func (r *FSRepository) categoryNames(category string) []string {
	if category != "" {
		return []string{category}
	}

	seen := make(map[string]struct{})
	for _, side := range []string{r.uploadsDir(), r.visualizationsDir()} {
		entries, err := os.ReadDir(side)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// scanUploads lists the upload artifacts of one category, keyed by
// timestamp key. Non-recursive: nested directories are not artifacts.
func (r *FSRepository) scanUploads(category string) map[string]*models.UploadInfo {
	dir := filepath.Join(r.uploadsDir(), category)
	out := make(map[string]*models.UploadInfo)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			log.Printf("[results] skipping unreadable upload %s/%s: %v", category, e.Name(), err)
			continue
		}
		key, display := naming.DecodeUpload(e.Name(), info.ModTime())
		out[key] = &models.UploadInfo{
			OriginalName: display,
			Path:         filepath.Join(dir, e.Name()),
			Size:         info.Size(),
			ModTime:      info.ModTime().Format(models.TimeFormat),
		}
	}
	return out
}

// scanVisualizations lists the visualization artifacts of one
// category, keyed by timestamp key. Files without the vis_ prefix are
// not inference outputs and are ignored.
func (r *FSRepository) scanVisualizations(category string) map[string]*models.VisualizationInfo {
	dir := filepath.Join(r.visualizationsDir(), category)
	out := make(map[string]*models.VisualizationInfo)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() || !naming.IsVisualization(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			log.Printf("[results] skipping unreadable visualization %s/%s: %v", category, e.Name(), err)
			continue
		}
		key := naming.DecodeVisualization(e.Name(), info.ModTime())
		out[key] = &models.VisualizationInfo{
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime().Format(models.TimeFormat),
		}
	}
	return out
}

// compareTimestampKeys orders keys numerically when both parse as
// decimal integers, so keys with differing digit counts still sort
// chronologically. Keys that do not parse (modtime fallbacks are
// numeric, but tampered names may not be) compare as raw strings.
func compareTimestampKeys(a, b string) int {
	ai, aerr := strconv.ParseUint(a, 10, 64)
	bi, berr := strconv.ParseUint(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func summarize(records []models.ResultRecord) models.ResultSummary {
	summary := models.ResultSummary{
		TotalResults: len(records),
		Categories:   make([]string, 0),
	}

	seen := make(map[string]struct{})
	for _, rec := range records {
		if _, ok := seen[rec.Category]; !ok {
			seen[rec.Category] = struct{}{}
			summary.Categories = append(summary.Categories, rec.Category)
		}
		if rec.Upload != nil {
			summary.TotalUploadSize += rec.Upload.Size
		}
		if rec.Visualization != nil {
			summary.TotalVisSize += rec.Visualization.Size
		}
	}
	sort.Strings(summary.Categories)
	return summary
}
