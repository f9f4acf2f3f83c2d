package results

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// CleanAll deletes every entry directly under the storage root and
// recreates the two empty subtrees. Deletion is best-effort and not
// transactional: individual failures are logged and skipped, and only
// what was actually removed is counted. dirsDeleted counts top-level
// directory entries, not their recursive contents.
func (r *FSRepository) CleanAll() (filesDeleted, dirsDeleted int, err error) {
	unlock := r.locks.lockAll()
	defer unlock()

	entries, readErr := os.ReadDir(r.root)
	if readErr != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, readErr)
	}

	for _, e := range entries {
		path := filepath.Join(r.root, e.Name())
		if e.IsDir() {
			if rmErr := os.RemoveAll(path); rmErr != nil {
				log.Printf("[results] failed to remove directory %s: %v", path, rmErr)
				continue
			}
			dirsDeleted++
		} else {
			if rmErr := os.Remove(path); rmErr != nil {
				log.Printf("[results] failed to remove file %s: %v", path, rmErr)
				continue
			}
			filesDeleted++
		}
	}

	for _, dir := range []string{r.uploadsDir(), r.visualizationsDir()} {
		if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
			return filesDeleted, dirsDeleted, fmt.Errorf("recreating %s: %w", dir, mkErr)
		}
	}

	return filesDeleted, dirsDeleted, nil
}

// CleanCategory deletes the category's files under both sides,
// non-recursively, mirroring the index builder's non-recursive read.
// Each now-possibly-empty category directory is then removed; a
// non-empty-directory failure there is swallowed, since the directory
// may legitimately still hold unexpected entries. Removing zero files
// reports ErrCategoryNotFound.
func (r *FSRepository) CleanCategory(category string) (int, error) {
	unlock := r.locks.lockCategory(category, true)
	defer unlock()

	filesDeleted := 0
	for _, dir := range []string{
		filepath.Join(r.uploadsDir(), category),
		filepath.Join(r.visualizationsDir(), category),
	} {
		filesDeleted += removeFilesFlat(dir)

		// Best effort; fails when unexpected entries remain.
		os.Remove(dir)
	}

	if filesDeleted == 0 {
		return 0, fmt.Errorf("%w: %s is absent or already empty", ErrCategoryNotFound, category)
	}
	return filesDeleted, nil
}

// removeFilesFlat deletes the directory's regular files and returns
// how many were actually removed. A missing or unreadable directory
// contributes nothing.
func removeFilesFlat(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("[results] failed to remove file %s: %v", path, err)
			continue
		}
		count++
	}
	return count
}
