package store

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// Store persists rendered overlay images, one per run. Nothing else about a
// run is stored.
//
// Error handling conventions:
//   - Return ErrNotFound if the run has no overlay (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveOverlay atomically writes the overlay for runID and returns its
	// path. An existing overlay for the same run is replaced.
	SaveOverlay(runID string, overlay image.Image) (string, error)

	// LoadOverlay decodes the overlay saved for runID.
	LoadOverlay(runID string) (*image.NRGBA, error)

	// ListOverlays returns metadata for every stored overlay.
	ListOverlays() ([]OverlayInfo, error)

	// DeleteOverlay removes the run directory and everything in it.
	DeleteOverlay(runID string) error
}

// OverlayInfo describes a stored overlay without decoding it.
type OverlayInfo struct {
	RunID     string
	Path      string
	Size      int64
	Timestamp time.Time
}

// NewRunID returns a fresh identifier for a matching run.
func NewRunID() string {
	return uuid.New().String()
}

// ErrNotFound is returned when a requested overlay does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing overlay.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "overlay not found: " + e.RunID
	}
	return "overlay not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
