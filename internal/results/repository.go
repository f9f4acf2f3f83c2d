// Package results manages the artifact tree that holds every uploaded
// image and its annotated visualization. The directory tree is the
// only persistent state: every listing, archive and cleanup is a view
// over (or mutation of) the current filesystem contents, keyed by the
// filename scheme in the naming package.
package results

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/image-inference/backend/internal/models"
	"github.com/image-inference/backend/internal/naming"
)

// Sentinel errors for whole-scope failures. Per-file errors during a
// scan, archive or cleanup are logged and skipped, never surfaced.
var (
	// ErrStorageUnavailable means the storage root itself cannot be
	// accessed; the operation as a whole fails.
	ErrStorageUnavailable = errors.New("results storage unavailable")

	// ErrCategoryNotFound means a scoped operation targeted a category
	// with no matching artifacts.
	ErrCategoryNotFound = errors.New("category not found")
)

// Repository is the access seam over the artifact tree. Callers never
// touch the tree directly, so a future implementation backed by a real
// index can replace FSRepository without changing them.
type Repository interface {
	// List returns all result records for the scope, newest first,
	// with summary statistics. An empty category means all categories.
	List(category string) ([]models.ResultRecord, models.ResultSummary, error)

	// BuildArchive bundles the scope into a zip with a trailing
	// manifest. The caller owns the returned archive and must Remove
	// it once consumed.
	BuildArchive(category string) (*Archive, error)

	// CleanAll deletes everything under the root and recreates the
	// empty uploads/ and visualizations/ subtrees.
	CleanAll() (filesDeleted, dirsDeleted int, err error)

	// CleanCategory deletes the category's files on both sides,
	// non-recursively, and prunes empty category directories. Deleting
	// nothing is ErrCategoryNotFound.
	CleanCategory(category string) (filesDeleted int, err error)

	// SaveUpload stores one upload artifact under the category using
	// the naming scheme. index > 0 marks a batch upload position.
	SaveUpload(category, original string, ts int64, index int, src io.Reader) (path string, size int64, err error)

	// VisualizationDir returns the category's visualization directory,
	// creating it if needed.
	VisualizationDir(category string) (string, error)

	// Root returns the storage root path.
	Root() string
}

// FSRepository implements Repository directly on a local directory
// tree laid out as {root}/{uploads|visualizations}/{category}/{file}.
type FSRepository struct {
	root  string
	locks *treeLocks
}

// NewFSRepository creates the repository and ensures the two top-level
// subtrees exist.
func NewFSRepository(root string) (*FSRepository, error) {
	for _, dir := range []string{root, filepath.Join(root, "uploads"), filepath.Join(root, "visualizations")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating results directory %s: %w", dir, err)
		}
	}
	return &FSRepository{root: root, locks: newTreeLocks()}, nil
}

// Root returns the storage root path.
func (r *FSRepository) Root() string {
	return r.root
}

func (r *FSRepository) uploadsDir() string {
	return filepath.Join(r.root, "uploads")
}

func (r *FSRepository) visualizationsDir() string {
	return filepath.Join(r.root, "visualizations")
}

// SaveUpload writes one upload artifact. The category directory is
// created on demand; the category lock is held for the duration of
// the write so listings never observe a partially written name set.
func (r *FSRepository) SaveUpload(category, original string, ts int64, index int, src io.Reader) (string, int64, error) {
	unlock := r.locks.lockCategory(category, true)
	defer unlock()

	dir := filepath.Join(r.uploadsDir(), category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("creating upload directory: %w", err)
	}

	name := naming.UploadName(ts, original)
	if index > 0 {
		name = naming.BatchUploadName(ts, index, original)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, src)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("writing upload file: %w", err)
	}

	return path, size, nil
}

// VisualizationDir returns (and creates) the category's visualization
// directory for the inference engine to write into.
func (r *FSRepository) VisualizationDir(category string) (string, error) {
	dir := filepath.Join(r.visualizationsDir(), category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating visualization directory: %w", err)
	}
	return dir, nil
}
