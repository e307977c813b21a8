package store

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

// createTestOverlay returns a small image with a distinct pixel per position.
func createTestOverlay(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 200, 255})
		}
	}
	return img
}

func TestNewFSStore(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFSStore(baseDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}

	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveAndLoadOverlay(t *testing.T) {
	var store Store
	fs, tempDir := setupTestStore(t)
	store = fs

	runID := NewRunID()
	overlay := createTestOverlay(6, 4)

	path, err := store.SaveOverlay(runID, overlay)
	if err != nil {
		t.Fatalf("SaveOverlay failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "runs", runID, "overlay.png")
	if path != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, path)
	}
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Overlay file was not created at %s", expectedPath)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(expectedPath))
	if err != nil {
		t.Fatalf("Failed to read run directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only overlay.png in run directory, found %d entries", len(entries))
	}

	loaded, err := store.LoadOverlay(runID)
	if err != nil {
		t.Fatalf("LoadOverlay failed: %v", err)
	}
	if loaded.Bounds() != overlay.Bounds() {
		t.Fatalf("Loaded bounds %v, expected %v", loaded.Bounds(), overlay.Bounds())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			if loaded.NRGBAAt(x, y) != overlay.NRGBAAt(x, y) {
				t.Errorf("Pixel (%d,%d) = %v, expected %v", x, y, loaded.NRGBAAt(x, y), overlay.NRGBAAt(x, y))
			}
		}
	}
}

func TestSaveOverlayOverwrite(t *testing.T) {
	store, _ := setupTestStore(t)
	runID := "run-overwrite"

	if _, err := store.SaveOverlay(runID, createTestOverlay(2, 2)); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if _, err := store.SaveOverlay(runID, createTestOverlay(5, 3)); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.LoadOverlay(runID)
	if err != nil {
		t.Fatalf("LoadOverlay failed: %v", err)
	}
	if loaded.Bounds().Dx() != 5 || loaded.Bounds().Dy() != 3 {
		t.Errorf("Expected the second overlay (5x3), got %v", loaded.Bounds())
	}
}

func TestSaveOverlayInvalidInput(t *testing.T) {
	store, _ := setupTestStore(t)

	if _, err := store.SaveOverlay("", createTestOverlay(1, 1)); err == nil {
		t.Error("Expected error for empty runID")
	}
	if _, err := store.SaveOverlay("run", nil); err == nil {
		t.Error("Expected error for nil overlay")
	}
	if _, err := store.LoadOverlay(""); err == nil {
		t.Error("Expected error for empty runID on load")
	}
	if err := store.DeleteOverlay(""); err == nil {
		t.Error("Expected error for empty runID on delete")
	}
}

func TestLoadOverlayNotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadOverlay("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.RunID != "missing" {
		t.Errorf("Expected NotFoundError carrying the run ID, got %v", err)
	}
}

func TestListOverlays(t *testing.T) {
	store, tempDir := setupTestStore(t)

	infos, err := store.ListOverlays()
	if err != nil {
		t.Fatalf("ListOverlays on empty store failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected 0 overlays, got %d", len(infos))
	}

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if _, err := store.SaveOverlay(id, createTestOverlay(3, 3)); err != nil {
			t.Fatalf("SaveOverlay(%s) failed: %v", id, err)
		}
	}
	// Backdate run-b so ordering is deterministic.
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(store.OverlayPath("run-b"), old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	// A run directory without an overlay is ignored.
	if err := os.MkdirAll(filepath.Join(tempDir, "runs", "empty-run"), 0755); err != nil {
		t.Fatalf("Failed to create empty run dir: %v", err)
	}

	infos, err = store.ListOverlays()
	if err != nil {
		t.Fatalf("ListOverlays failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 overlays, got %d", len(infos))
	}
	if infos[0].RunID != "run-b" {
		t.Errorf("Expected oldest overlay run-b first, got %s", infos[0].RunID)
	}
	for _, info := range infos {
		if info.Size <= 0 {
			t.Errorf("Overlay %s has size %d", info.RunID, info.Size)
		}
	}
}

func TestRunIDMustNameOneDirectory(t *testing.T) {
	store, tempDir := setupTestStore(t)
	if _, err := store.SaveOverlay("keep", createTestOverlay(2, 2)); err != nil {
		t.Fatalf("SaveOverlay failed: %v", err)
	}

	for _, runID := range []string{".", "..", "../runs", "a/b", `a\b`, "/abs"} {
		if _, err := store.SaveOverlay(runID, createTestOverlay(1, 1)); err == nil {
			t.Errorf("SaveOverlay(%q) expected error", runID)
		}
		if _, err := store.LoadOverlay(runID); err == nil {
			t.Errorf("LoadOverlay(%q) expected error", runID)
		}
		if err := store.DeleteOverlay(runID); err == nil {
			t.Errorf("DeleteOverlay(%q) expected error", runID)
		}
	}

	if _, err := os.Stat(filepath.Join(tempDir, "runs", "keep", overlayFile)); err != nil {
		t.Errorf("Stored overlay lost after rejected deletes: %v", err)
	}
}

func TestDeleteOverlay(t *testing.T) {
	store, tempDir := setupTestStore(t)
	runID := "run-delete"

	if _, err := store.SaveOverlay(runID, createTestOverlay(2, 2)); err != nil {
		t.Fatalf("SaveOverlay failed: %v", err)
	}

	if err := store.DeleteOverlay(runID); err != nil {
		t.Fatalf("DeleteOverlay failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "runs", runID)); !os.IsNotExist(err) {
		t.Error("Run directory still exists after delete")
	}

	if err := store.DeleteOverlay(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestWriteImageAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")

	if err := WriteImageAtomic(path, createTestOverlay(4, 4)); err != nil {
		t.Fatalf("WriteImageAtomic failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected %s to exist: %v", path, err)
	}

	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "out.png")
	if err := WriteImageAtomic(missing, createTestOverlay(1, 1)); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}

func TestNewRunIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRunID()
		if seen[id] {
			t.Fatalf("Duplicate run ID %s", id)
		}
		seen[id] = true
	}
}
