package match

import (
	"errors"
	"fmt"
	"image"
)

// Sentinels for errors.Is checks. The concrete error types below match them.
var (
	ErrInvalidGrid       = &InvalidGridError{}
	ErrDimensionMismatch = &DimensionMismatchError{}
	ErrEmptyPieceSet     = &EmptyPieceSetError{}
)

// ErrScoreAlreadySet is returned when a piece is scored a second time.
var ErrScoreAlreadySet = errors.New("similarity score already set")

// InvalidGridError reports a non-positive or degenerate grid.
type InvalidGridError struct {
	Cols, Rows int
	Reason     string
}

func (e *InvalidGridError) Error() string {
	if e.Reason == "" {
		return "invalid grid"
	}
	return fmt.Sprintf("invalid grid %dx%d: %s", e.Cols, e.Rows, e.Reason)
}

func (e *InvalidGridError) Is(target error) bool {
	_, ok := target.(*InvalidGridError)
	return ok
}

// DimensionMismatchError reports a target piece whose pixel dimensions differ
// from the reference cell size at comparison time.
type DimensionMismatchError struct {
	Want image.Point
	Got  image.Point
}

func (e *DimensionMismatchError) Error() string {
	if e.Want == (image.Point{}) && e.Got == (image.Point{}) {
		return "dimension mismatch"
	}
	return fmt.Sprintf("dimension mismatch: want %dx%d, got %dx%d", e.Want.X, e.Want.Y, e.Got.X, e.Got.Y)
}

func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)
	return ok
}

// EmptyPieceSetError reports a partition or ranking with no pieces in it.
//
// When the pieces are missing because the grid is larger than the image,
// GridTooLarge is set and the error also matches ErrInvalidGrid.
type EmptyPieceSetError struct {
	Reason       string
	GridTooLarge bool
}

func (e *EmptyPieceSetError) Error() string {
	if e.Reason == "" {
		return "empty piece set"
	}
	return "empty piece set: " + e.Reason
}

func (e *EmptyPieceSetError) Is(target error) bool {
	switch target.(type) {
	case *EmptyPieceSetError:
		return true
	case *InvalidGridError:
		return e.GridTooLarge
	}
	return false
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Reason
}
