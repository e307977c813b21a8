package match

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Partition cuts ref into grid.Cols x grid.Rows equally sized pieces in
// row-major order. Remainder pixels on the right and bottom edges are
// dropped. The grid is validated before ref is touched.
//
// Distributions are left for ExtractAll so the caller controls parallelism.
func Partition(ref image.Image, grid GridSize) ([]*Piece, Geometry, error) {
	if err := grid.Validate(); err != nil {
		return nil, Geometry{}, err
	}

	bounds := ref.Bounds()
	geom := Geometry{
		Grid:        grid,
		PieceWidth:  bounds.Dx() / grid.Cols,
		PieceHeight: bounds.Dy() / grid.Rows,
	}
	if geom.PieceWidth == 0 || geom.PieceHeight == 0 {
		return nil, geom, &EmptyPieceSetError{
			Reason:       fmt.Sprintf("grid %s is larger than %dx%d image", grid, bounds.Dx(), bounds.Dy()),
			GridTooLarge: true,
		}
	}

	pieces := make([]*Piece, 0, grid.Cells())
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			x0 := bounds.Min.X + col*geom.PieceWidth
			y0 := bounds.Min.Y + row*geom.PieceHeight
			rect := image.Rect(x0, y0, x0+geom.PieceWidth, y0+geom.PieceHeight)
			pieces = append(pieces, newReferencePiece(imaging.Crop(ref, rect), row, col, len(pieces)))
		}
	}

	slog.Debug("Partitioned reference",
		"cols", grid.Cols,
		"rows", grid.Rows,
		"piece_width", geom.PieceWidth,
		"piece_height", geom.PieceHeight,
		"discarded_x", bounds.Dx()-grid.Cols*geom.PieceWidth,
		"discarded_y", bounds.Dy()-grid.Rows*geom.PieceHeight,
	)

	return pieces, geom, nil
}
