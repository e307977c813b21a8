package match

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// GridSize is the number of columns and rows the reference image is cut into.
type GridSize struct {
	Cols int
	Rows int
}

// Cells returns the number of grid cells.
func (g GridSize) Cells() int {
	return g.Cols * g.Rows
}

func (g GridSize) String() string {
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// Validate rejects non-positive grids.
func (g GridSize) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return &InvalidGridError{Cols: g.Cols, Rows: g.Rows, Reason: "columns and rows must be positive"}
	}
	return nil
}

// Metric selects the per-channel histogram comparison.
type Metric int

const (
	// MetricIntersection sums the per-bucket minimum of two histograms.
	MetricIntersection Metric = iota
	// MetricCorrelation is the Pearson correlation of the bucket counts.
	MetricCorrelation
)

func (m Metric) String() string {
	switch m {
	case MetricIntersection:
		return "intersection"
	case MetricCorrelation:
		return "correlation"
	default:
		return "unknown"
	}
}

// ParseMetric parses a metric name as accepted on the command line.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "intersection", "intersect":
		return MetricIntersection, nil
	case "correlation", "correl":
		return MetricCorrelation, nil
	}
	return 0, &ConfigError{Field: "Metric", Reason: fmt.Sprintf("unknown metric %q", s)}
}

// ScoringMode selects how the three channel comparisons are combined.
type ScoringMode int

const (
	// ScoringSum averages all three channel comparisons.
	ScoringSum ScoringMode = iota
	// ScoringLegacy keeps only the red channel comparison and divides it by
	// three. Older match output was produced this way; use it only when
	// results must be reproduced exactly.
	ScoringLegacy
)

func (s ScoringMode) String() string {
	switch s {
	case ScoringSum:
		return "sum"
	case ScoringLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ParseScoringMode parses a scoring mode name.
func ParseScoringMode(s string) (ScoringMode, error) {
	switch strings.ToLower(s) {
	case "sum", "corrected":
		return ScoringSum, nil
	case "legacy":
		return ScoringLegacy, nil
	}
	return 0, &ConfigError{Field: "Scoring", Reason: fmt.Sprintf("unknown scoring mode %q", s)}
}

// Config holds everything a matching run needs. It is passed explicitly to
// each stage.
type Config struct {
	Grid         GridSize
	OverlayColor color.NRGBA
	AlphaMax     float64
	AlphaStep    float64
	TopK         int // 0 = all pieces
	BorderWidth  int // pixels, drawn inside each cell
	Metric       Metric
	Scoring      ScoringMode
	Workers      int // 0 = runtime.NumCPU()
}

// Yellow is the default highlight colour.
var Yellow = color.NRGBA{R: 255, G: 255, B: 0, A: 255}

// DefaultConfig returns the default configuration: a 15x7 grid with a
// yellow highlight fading from 0.9 by 0.07 per rank.
func DefaultConfig() Config {
	return Config{
		Grid:         GridSize{Cols: 15, Rows: 7},
		OverlayColor: Yellow,
		AlphaMax:     0.9,
		AlphaStep:    0.07,
		BorderWidth:  3,
		Metric:       MetricIntersection,
		Scoring:      ScoringSum,
	}
}

// Validate checks the configuration. Grid problems are reported as
// *InvalidGridError, everything else as *ConfigError.
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if !unitInterval(c.AlphaMax) {
		return &ConfigError{Field: "AlphaMax", Reason: "must be within [0, 1]"}
	}
	if !unitInterval(c.AlphaStep) {
		return &ConfigError{Field: "AlphaStep", Reason: "must be within [0, 1]"}
	}
	if c.TopK < 0 {
		return &ConfigError{Field: "TopK", Reason: "cannot be negative"}
	}
	if c.BorderWidth < 0 {
		return &ConfigError{Field: "BorderWidth", Reason: "cannot be negative"}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "Workers", Reason: "cannot be negative"}
	}
	if c.Metric != MetricIntersection && c.Metric != MetricCorrelation {
		return &ConfigError{Field: "Metric", Reason: "unknown metric"}
	}
	if c.Scoring != ScoringSum && c.Scoring != ScoringLegacy {
		return &ConfigError{Field: "Scoring", Reason: "unknown scoring mode"}
	}
	return nil
}

// unitInterval reports whether v is a finite number within [0, 1].
func unitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
