// index_test.go - Tests for the result index builder
package results

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/image-inference/backend/internal/testutil"
)

func newTestRepo(t *testing.T) *FSRepository {
	t.Helper()

	repo, err := NewFSRepository(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	return repo
}

func TestList_PairsUploadAndVisualization(t *testing.T) {
	repo := newTestRepo(t)
	uploadPath, visPath := testutil.SeedResultPair(t, repo.Root(), "cat", "1000", "dog.jpg")

	records, summary, err := repo.List("cat")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.ID != "cat_1000" {
		t.Errorf("Expected id cat_1000, got %s", rec.ID)
	}
	if rec.Upload == nil || rec.Visualization == nil {
		t.Fatalf("Expected both sides present, got upload=%v vis=%v", rec.Upload, rec.Visualization)
	}
	if rec.Upload.OriginalName != "dog.jpg" {
		t.Errorf("Expected original name dog.jpg, got %s", rec.Upload.OriginalName)
	}
	if rec.Upload.Path != uploadPath {
		t.Errorf("Expected upload path %s, got %s", uploadPath, rec.Upload.Path)
	}
	if rec.Visualization.Path != visPath {
		t.Errorf("Expected vis path %s, got %s", visPath, rec.Visualization.Path)
	}
	if rec.Upload.Size != int64(len("original-image-bytes")) {
		t.Errorf("Unexpected upload size %d", rec.Upload.Size)
	}

	if summary.TotalResults != 1 {
		t.Errorf("Expected total 1, got %d", summary.TotalResults)
	}
	if !reflect.DeepEqual(summary.Categories, []string{"cat"}) {
		t.Errorf("Expected categories [cat], got %v", summary.Categories)
	}
}

func TestList_OneSidedRecords(t *testing.T) {
	t.Run("orphaned upload", func(t *testing.T) {
		repo := newTestRepo(t)
		testutil.SeedArtifact(t, repo.Root(), "uploads", "cat", "1000_dog.jpg", "x")

		records, _, err := repo.List("cat")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		if records[0].Upload == nil || records[0].Visualization != nil {
			t.Error("Expected upload-only record")
		}
	})

	t.Run("upload-less visualization", func(t *testing.T) {
		repo := newTestRepo(t)
		testutil.SeedArtifact(t, repo.Root(), "visualizations", "cat", "vis_dog_1000.jpg", "x")

		records, _, err := repo.List("cat")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		if records[0].Upload != nil || records[0].Visualization == nil {
			t.Error("Expected visualization-only record")
		}
		if records[0].ID != "cat_1000" {
			t.Errorf("Expected id cat_1000, got %s", records[0].ID)
		}
	})
}

func TestList_IgnoresNonArtifacts(t *testing.T) {
	repo := newTestRepo(t)
	testutil.SeedArtifact(t, repo.Root(), "uploads", "cat", "1000_dog.jpg", "x")
	// Visualization without the prefix marker is not an inference output.
	testutil.SeedArtifact(t, repo.Root(), "visualizations", "cat", "notes_1000.txt", "x")
	// Nested directories are not artifacts.
	if err := os.MkdirAll(filepath.Join(repo.Root(), "uploads", "cat", "nested"), 0755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}
	testutil.SeedArtifact(t, repo.Root(), "uploads", "cat/nested", "2000_deep.jpg", "x")

	records, _, err := repo.List("cat")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Visualization != nil {
		t.Error("Non-prefixed file must not appear as visualization")
	}
}

func TestList_UnionsCategoriesAcrossSides(t *testing.T) {
	repo := newTestRepo(t)
	testutil.SeedArtifact(t, repo.Root(), "uploads", "cats", "1000_a.jpg", "x")
	testutil.SeedArtifact(t, repo.Root(), "visualizations", "dogs", "vis_b_2000.jpg", "x")

	records, summary, err := repo.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if !reflect.DeepEqual(summary.Categories, []string{"cats", "dogs"}) {
		t.Errorf("Expected categories [cats dogs], got %v", summary.Categories)
	}
}

func TestList_SortsNumericallyDescending(t *testing.T) {
	repo := newTestRepo(t)
	// Differing digit counts: a raw string sort would order 999 before 1000.
	testutil.SeedArtifact(t, repo.Root(), "uploads", "cat", "999_a.jpg", "x")
	testutil.SeedArtifact(t, repo.Root(), "uploads", "cat", "1000_b.jpg", "x")
	testutil.SeedArtifact(t, repo.Root(), "uploads", "cat", "50_c.jpg", "x")

	records, _, err := repo.List("cat")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var keys []string
	for _, r := range records {
		keys = append(keys, r.Timestamp)
	}
	want := []string{"1000", "999", "50"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Expected order %v, got %v", want, keys)
	}
}

func TestList_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	testutil.SeedResultPair(t, repo.Root(), "cat", "1000", "dog.jpg")
	testutil.SeedArtifact(t, repo.Root(), "uploads", "dogs", "2000_b.jpg", "x")

	first, firstSummary, err := repo.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	second, secondSummary, err := repo.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Two listings without mutation must be identical")
	}
	if !reflect.DeepEqual(firstSummary, secondSummary) {
		t.Error("Two summaries without mutation must be identical")
	}
}

func TestList_UniqueRecordIDs(t *testing.T) {
	repo := newTestRepo(t)
	testutil.SeedResultPair(t, repo.Root(), "cat", "1000", "dog.jpg")
	testutil.SeedResultPair(t, repo.Root(), "cat", "2000", "cat.jpg")
	testutil.SeedResultPair(t, repo.Root(), "dog", "1000", "pup.jpg")

	records, _, err := repo.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			t.Errorf("Duplicate record id %s", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
}

func TestList_Summary(t *testing.T) {
	repo := newTestRepo(t)
	testutil.SeedResultPair(t, repo.Root(), "cat", "1000", "dog.jpg")
	testutil.SeedArtifact(t, repo.Root(), "uploads", "cat", "2000_b.jpg", "12345")

	_, summary, err := repo.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	wantUpload := int64(len("original-image-bytes") + 5)
	if summary.TotalUploadSize != wantUpload {
		t.Errorf("Expected upload size %d, got %d", wantUpload, summary.TotalUploadSize)
	}
	wantVis := int64(len("annotated-image-bytes"))
	if summary.TotalVisSize != wantVis {
		t.Errorf("Expected vis size %d, got %d", wantVis, summary.TotalVisSize)
	}
	if summary.TotalResults != 2 {
		t.Errorf("Expected 2 results, got %d", summary.TotalResults)
	}
}

func TestList_MissingRootIsStorageUnavailable(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.RemoveAll(repo.Root()); err != nil {
		t.Fatalf("Failed to remove root: %v", err)
	}

	_, _, err := repo.List("")
	if err == nil {
		t.Fatal("Expected error for missing storage root")
	}
	if !strings.Contains(err.Error(), ErrStorageUnavailable.Error()) {
		t.Errorf("Expected storage-unavailable error, got %v", err)
	}
}

func TestList_AbsentCategoryIsEmptyNotError(t *testing.T) {
	repo := newTestRepo(t)

	records, summary, err := repo.List("ghost")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 || summary.TotalResults != 0 {
		t.Errorf("Expected empty result set, got %d records", len(records))
	}
}

func TestSaveUpload(t *testing.T) {
	t.Run("single upload naming", func(t *testing.T) {
		repo := newTestRepo(t)

		path, size, err := repo.SaveUpload("cat", "dog.jpg", 1000, 0, strings.NewReader("content"))
		if err != nil {
			t.Fatalf("SaveUpload failed: %v", err)
		}
		if filepath.Base(path) != "1000_dog.jpg" {
			t.Errorf("Unexpected filename %s", filepath.Base(path))
		}
		if size != int64(len("content")) {
			t.Errorf("Expected size %d, got %d", len("content"), size)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read saved upload: %v", err)
		}
		if string(data) != "content" {
			t.Errorf("Unexpected content %q", data)
		}
	})

	t.Run("batch upload naming", func(t *testing.T) {
		repo := newTestRepo(t)

		path, _, err := repo.SaveUpload("cat", "dog.jpg", 1000, 3, strings.NewReader("x"))
		if err != nil {
			t.Fatalf("SaveUpload failed: %v", err)
		}
		if filepath.Base(path) != "1000_3_dog.jpg" {
			t.Errorf("Unexpected filename %s", filepath.Base(path))
		}
	})
}

func TestCompareTimestampKeys(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1000", "999", 1},
		{"999", "1000", -1},
		{"1000", "1000", 0},
		{"abc", "abd", -1},
		{"1000", "abc", -1}, // mixed falls back to string order
	}
	for _, tc := range cases {
		got := compareTimestampKeys(tc.a, tc.b)
		if (got > 0) != (tc.want > 0) || (got < 0) != (tc.want < 0) {
			t.Errorf("compareTimestampKeys(%q, %q) = %d, want sign of %d", tc.a, tc.b, got, tc.want)
		}
	}
}
