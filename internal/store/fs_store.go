package store

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

const overlayFile = "overlay.png"

// FSStore implements Store on the filesystem. Overlays live at
// <baseDir>/runs/<runID>/overlay.png.
//
// Writes go through a temp file and a rename, so readers never see a
// partial PNG and no locking is needed.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem store, creating baseDir if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

// checkRunID rejects IDs that do not name a single directory below runs/.
func checkRunID(runID string) error {
	switch {
	case runID == "":
		return fmt.Errorf("runID cannot be empty")
	case runID == "." || runID == "..":
		return fmt.Errorf("invalid runID %q", runID)
	case strings.ContainsAny(runID, `/\`) || filepath.Base(runID) != runID:
		return fmt.Errorf("runID %q must not contain a path separator", runID)
	}
	return nil
}

func (fs *FSStore) runsDir() string {
	return filepath.Join(fs.baseDir, "runs")
}

func (fs *FSStore) runDir(runID string) string {
	return filepath.Join(fs.runsDir(), runID)
}

// OverlayPath returns where the overlay for runID is stored.
func (fs *FSStore) OverlayPath(runID string) string {
	return filepath.Join(fs.runDir(runID), overlayFile)
}

// SaveOverlay atomically writes overlay as PNG for the given run.
func (fs *FSStore) SaveOverlay(runID string, overlay image.Image) (string, error) {
	if err := checkRunID(runID); err != nil {
		return "", err
	}
	if overlay == nil {
		return "", fmt.Errorf("overlay cannot be nil")
	}

	if err := os.MkdirAll(fs.runDir(runID), 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	finalPath := fs.OverlayPath(runID)
	if err := WriteImageAtomic(finalPath, overlay); err != nil {
		return "", err
	}

	slog.Debug("Overlay saved", "run_id", runID, "path", finalPath)
	return finalPath, nil
}

// WriteImageAtomic encodes img as PNG into path via a temp file in the same
// directory followed by a rename.
func WriteImageAtomic(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename overlay file: %w", err)
	}
	return nil
}

// LoadOverlay decodes the overlay saved for runID.
func (fs *FSStore) LoadOverlay(runID string) (*image.NRGBA, error) {
	if err := checkRunID(runID); err != nil {
		return nil, err
	}

	path := fs.OverlayPath(runID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat overlay file: %w", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode overlay: %w", err)
	}

	slog.Debug("Overlay loaded", "run_id", runID, "path", path)
	return imaging.Clone(img), nil
}

// ListOverlays returns metadata for all stored overlays, oldest first.
func (fs *FSStore) ListOverlays() ([]OverlayInfo, error) {
	entries, err := os.ReadDir(fs.runsDir())
	if os.IsNotExist(err) {
		return []OverlayInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	infos := []OverlayInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		runID := entry.Name()
		path := fs.OverlayPath(runID)
		stat, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue // Skip runs that never wrote an overlay
		} else if err != nil {
			slog.Warn("Failed to stat overlay for listing", "run_id", runID, "error", err)
			continue
		}

		infos = append(infos, OverlayInfo{
			RunID:     runID,
			Path:      path,
			Size:      stat.Size(),
			Timestamp: stat.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.Before(infos[j].Timestamp)
	})

	slog.Debug("Listed overlays", "count", len(infos))
	return infos, nil
}

// DeleteOverlay removes the run directory for runID.
func (fs *FSStore) DeleteOverlay(runID string) error {
	if err := checkRunID(runID); err != nil {
		return err
	}

	runDir := fs.runDir(runID)
	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Overlay deleted", "run_id", runID, "path", runDir)
	return nil
}
