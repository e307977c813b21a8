package match

import (
	"image"

	"github.com/disintegration/imaging"
)

// GridPosition locates a reference piece within the grid.
type GridPosition struct {
	Row, Col int
}

// Geometry describes how a reference image was divided.
type Geometry struct {
	Grid        GridSize
	PieceWidth  int
	PieceHeight int
}

// PieceSize returns the cell dimensions as a point.
func (g Geometry) PieceSize() image.Point {
	return image.Pt(g.PieceWidth, g.PieceHeight)
}

// Bounds returns the rectangle covered by the reassembled grid.
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Grid.Cols*g.PieceWidth, g.Grid.Rows*g.PieceHeight)
}

// Piece is one reference cell or the target piece.
//
// A piece owns its pixels. They are never handed out by reference; use
// RenderCopy for anything that needs to draw on them.
type Piece struct {
	pixels       *image.NRGBA
	position     *GridPosition
	offset       int
	distribution Distribution
	extracted    bool

	score  float64
	scored bool
}

func newReferencePiece(pixels *image.NRGBA, row, col, offset int) *Piece {
	return &Piece{
		pixels:   pixels,
		position: &GridPosition{Row: row, Col: col},
		offset:   offset,
	}
}

// NewTargetPiece builds the target piece from a decoded image. The image is
// resized to the cell size of geom with bilinear filtering (copied as-is if
// it already has that size) and its distribution is computed.
func NewTargetPiece(img image.Image, geom Geometry) *Piece {
	var pixels *image.NRGBA
	if img.Bounds().Size() == geom.PieceSize() {
		pixels = imaging.Clone(img)
	} else {
		pixels = imaging.Resize(img, geom.PieceWidth, geom.PieceHeight, imaging.Linear)
	}
	p := &Piece{pixels: pixels, offset: -1}
	p.extract()
	return p
}

func (p *Piece) extract() {
	if p.extracted {
		return
	}
	p.distribution = Extract(p.pixels)
	p.extracted = true
}

// Size returns the pixel dimensions.
func (p *Piece) Size() image.Point {
	return p.pixels.Bounds().Size()
}

// Position returns the grid position. ok is false for the target piece.
func (p *Piece) Position() (pos GridPosition, ok bool) {
	if p.position == nil {
		return GridPosition{}, false
	}
	return *p.position, true
}

// Offset returns the row-major sequence offset, or -1 for the target piece.
func (p *Piece) Offset() int {
	return p.offset
}

// HasOffset reports whether the piece belongs to the reference grid.
func (p *Piece) HasOffset() bool {
	return p.offset >= 0
}

// Distribution returns a copy of the piece's channel histograms.
func (p *Piece) Distribution() Distribution {
	return p.distribution
}

// Extracted reports whether the distribution has been computed.
func (p *Piece) Extracted() bool {
	return p.extracted
}

// Score returns the similarity score. ok is false until the piece is scored.
func (p *Piece) Score() (score float64, ok bool) {
	return p.score, p.scored
}

// CompareWith scores the piece against the target distribution. The score
// can only be written once.
func (p *Piece) CompareWith(target *Piece, metric Metric, mode ScoringMode) error {
	if p.scored {
		return ErrScoreAlreadySet
	}
	if got, want := target.Size(), p.Size(); got != want {
		return &DimensionMismatchError{Want: want, Got: got}
	}
	if !p.extracted {
		p.extract()
	}
	td := target.Distribution()
	p.score = Similarity(p.distribution, td, metric, mode)
	p.scored = true
	return nil
}

// RenderCopy returns an independent copy of the pixels for drawing.
func (p *Piece) RenderCopy() *image.NRGBA {
	return imaging.Clone(p.pixels)
}
