package results

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/image-inference/backend/internal/models"
)

// Archive is a built result bundle sitting in temporary storage. The
// caller owns it: Remove must run once the bytes have been consumed,
// on every exit path.
type Archive struct {
	// Path is the temporary zip file on disk.
	Path string
	// Name is the deterministic download filename.
	Name string
	// FileCount is the number of matched artifacts inside, manifest
	// excluded.
	FileCount int
}

// Remove deletes the temporary zip file.
func (a *Archive) Remove() {
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		log.Printf("[results] failed to remove temp archive %s: %v", a.Path, err)
	}
}

// BuildArchive bundles the scope's artifacts into a zip written to a
// temporary file, with a generated README.txt manifest as the last
// entry. The all scope preserves relative paths under each side and
// may legitimately produce a manifest-only archive; the category scope
// uses flat filenames and fails with ErrCategoryNotFound when it would
// contain zero artifacts.
func (r *FSRepository) BuildArchive(category string) (*Archive, error) {
	var unlock func()
	if category == "" {
		unlock = r.locks.lockAll()
	} else {
		unlock = r.locks.lockCategory(category, false)
	}
	defer unlock()

	if _, err := os.Stat(r.root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	uploadScope := r.uploadsDir()
	visScope := r.visualizationsDir()
	if category != "" {
		uploadScope = filepath.Join(uploadScope, category)
		visScope = filepath.Join(visScope, category)

		// Checked before any temp file exists, so an unknown category
		// never leaves one behind.
		if !dirExists(uploadScope) && !dirExists(visScope) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
		}
	}

	tmpPath := filepath.Join(os.TempDir(), "inference_archive_"+uuid.NewString()+".zip")
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("creating temp archive: %w", err)
	}

	zw := zip.NewWriter(f)
	count := 0
	if category == "" {
		count += addTreeRecursive(zw, uploadScope, "uploads")
		count += addTreeRecursive(zw, visScope, "visualizations")
	} else {
		count += addDirFlat(zw, uploadScope, "uploads")
		count += addDirFlat(zw, visScope, "visualizations")
	}

	if count == 0 && category != "" {
		zw.Close()
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: no files under category %s", ErrCategoryNotFound, category)
	}

	if err := writeManifest(zw, category, count); err != nil {
		zw.Close()
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("writing archive manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	return &Archive{
		Path:      tmpPath,
		Name:      downloadName(category),
		FileCount: count,
	}, nil
}

// addTreeRecursive writes every file under root into the zip at
// prefix/<relative-path>. Per-file failures are skipped, not fatal.
func addTreeRecursive(zw *zip.Writer, root, prefix string) int {
	count := 0
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("[results] skipping %s during archive: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if copyIntoZip(zw, path, prefix+"/"+filepath.ToSlash(rel)) {
			count++
		}
		return nil
	})
	return count
}

// addDirFlat writes the directory's files into the zip under
// prefix/<filename>, non-recursive.
func addDirFlat(zw *zip.Writer, dir, prefix string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if copyIntoZip(zw, filepath.Join(dir, e.Name()), prefix+"/"+e.Name()) {
			count++
		}
	}
	return count
}

func copyIntoZip(zw *zip.Writer, path, arcName string) bool {
	src, err := os.Open(path)
	if err != nil {
		log.Printf("[results] skipping unreadable file %s during archive: %v", path, err)
		return false
	}
	defer src.Close()

	dst, err := zw.Create(arcName)
	if err != nil {
		log.Printf("[results] failed to add %s to archive: %v", arcName, err)
		return false
	}
	if _, err := io.Copy(dst, src); err != nil {
		log.Printf("[results] failed to copy %s into archive: %v", path, err)
		return false
	}
	return true
}

// writeManifest appends the README.txt manifest as the final entry.
// The manifest is bookkeeping, not a tracked artifact, and is never
// included in FileCount.
func writeManifest(zw *zip.Writer, category string, fileCount int) error {
	scope := "all categories"
	if category != "" {
		scope = "category: " + category
	}

	content := fmt.Sprintf(`Inference Results Archive
===================
Generated:  %s
File count: %d
Scope:      %s

Directory structure:
- uploads/        : original uploaded images
- visualizations/ : annotated detection result images

Usage:
1. uploads/ holds every original image in this scope
2. visualizations/ holds the corresponding images with detection boxes
3. the timestamp embedded in each filename correlates an original
   with its annotated result
`, time.Now().Format(models.TimeFormat), fileCount, scope)

	w, err := zw.Create("README.txt")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, content)
	return err
}

// downloadName builds the deterministic download filename:
// inference_results_[{category}_]{yyyyMMdd_HHmmss}.zip.
func downloadName(category string) string {
	stamp := time.Now().Format("20060102_150405")
	if category != "" {
		return fmt.Sprintf("inference_results_%s_%s.zip", category, stamp)
	}
	return fmt.Sprintf("inference_results_%s.zip", stamp)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
