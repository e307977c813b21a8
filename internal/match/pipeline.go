package match

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"
)

// Result holds the output of a Locate run.
type Result struct {
	Geometry Geometry
	Target   *Piece
	Ranking  *Ranking
	Overlay  *image.NRGBA
	Elapsed  time.Duration
}

// Best returns the best matching reference piece.
func (r *Result) Best() *Piece {
	return r.Ranking.Best()
}

// Locate finds the cell of ref that best matches target and renders the
// ranked overlay.
func Locate(ctx context.Context, ref, target image.Image, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	pieces, geom, err := Partition(ref, cfg.Grid)
	if err != nil {
		return nil, fmt.Errorf("partition reference: %w", err)
	}
	if err := ExtractAll(ctx, pieces, cfg.Workers); err != nil {
		return nil, fmt.Errorf("extract histograms: %w", err)
	}

	tp := NewTargetPiece(target, geom)
	slog.Debug("Prepared target",
		"source_width", target.Bounds().Dx(),
		"source_height", target.Bounds().Dy(),
		"piece_width", geom.PieceWidth,
		"piece_height", geom.PieceHeight,
	)

	ranking, err := Rank(pieces, tp, cfg)
	if err != nil {
		return nil, fmt.Errorf("rank pieces: %w", err)
	}

	overlay, err := Compose(ranking, geom, cfg)
	if err != nil {
		return nil, fmt.Errorf("compose overlay: %w", err)
	}

	return &Result{
		Geometry: geom,
		Target:   tp,
		Ranking:  ranking,
		Overlay:  overlay,
		Elapsed:  time.Since(start),
	}, nil
}
