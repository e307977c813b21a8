package match

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// Alpha returns the highlight blend weight for a 0-based rank:
// max(0, alphaMax - rank*step). It never increases with rank.
func Alpha(rank int, alphaMax, step float64) float64 {
	a := alphaMax - float64(rank)*step
	if a < 0 {
		return 0
	}
	return a
}

// cell is a rendered piece waiting to be placed back into the grid.
type cell struct {
	offset int
	img    *image.NRGBA
}

// Compose rebuilds the grid from the ranked pieces, tinting each cell toward
// cfg.OverlayColor by Alpha of its rank and outlining it with a solid border.
// Cells are put back in row-major order by sequence offset before the rows
// are concatenated and stacked.
//
// The result covers Cols*PieceWidth x Rows*PieceHeight pixels. Piece pixels
// are never modified; every cell is drawn on a RenderCopy.
func Compose(r *Ranking, geom Geometry, cfg Config) (*image.NRGBA, error) {
	if r == nil || r.Len() == 0 {
		return nil, &EmptyPieceSetError{Reason: "nothing to compose"}
	}
	if err := geom.Grid.Validate(); err != nil {
		return nil, err
	}
	if r.Len() != geom.Grid.Cells() {
		return nil, &InvalidGridError{
			Cols:   geom.Grid.Cols,
			Rows:   geom.Grid.Rows,
			Reason: fmt.Sprintf("ranking holds %d pieces, grid has %d cells", r.Len(), geom.Grid.Cells()),
		}
	}

	cells := make([]cell, 0, r.Len())
	for rank, p := range r.pieces {
		if p.Size() != geom.PieceSize() {
			return nil, &DimensionMismatchError{Want: geom.PieceSize(), Got: p.Size()}
		}
		img := p.RenderCopy()
		drawBorder(img, cfg.BorderWidth, cfg.OverlayColor)
		blend(img, cfg.OverlayColor, Alpha(rank, cfg.AlphaMax, cfg.AlphaStep))
		cells = append(cells, cell{offset: p.offset, img: img})
	}

	sort.Slice(cells, func(i, j int) bool { return cells[i].offset < cells[j].offset })
	for i, c := range cells {
		if c.offset != i {
			return nil, &InvalidGridError{
				Cols:   geom.Grid.Cols,
				Rows:   geom.Grid.Rows,
				Reason: fmt.Sprintf("sequence offsets are not dense: found %d at position %d", c.offset, i),
			}
		}
	}

	rows := make([]*image.NRGBA, 0, geom.Grid.Rows)
	for row := 0; row < geom.Grid.Rows; row++ {
		start := row * geom.Grid.Cols
		rows = append(rows, hstack(cells[start:start+geom.Grid.Cols]))
	}
	out := vstack(rows)

	slog.Debug("Composed overlay", "width", out.Bounds().Dx(), "height", out.Bounds().Dy())
	return out, nil
}

// hstack concatenates cells left to right.
func hstack(cells []cell) *image.NRGBA {
	var w, h int
	for _, c := range cells {
		w += c.img.Bounds().Dx()
		h = max(h, c.img.Bounds().Dy())
	}
	out := imaging.New(w, h, color.NRGBA{})
	x := 0
	for _, c := range cells {
		out = imaging.Paste(out, c.img, image.Pt(x, 0))
		x += c.img.Bounds().Dx()
	}
	return out
}

// vstack stacks rows top to bottom.
func vstack(rows []*image.NRGBA) *image.NRGBA {
	var w, h int
	for _, r := range rows {
		w = max(w, r.Bounds().Dx())
		h += r.Bounds().Dy()
	}
	out := imaging.New(w, h, color.NRGBA{})
	y := 0
	for _, r := range rows {
		out = imaging.Paste(out, r, image.Pt(0, y))
		y += r.Bounds().Dy()
	}
	return out
}

// drawBorder paints a solid frame of the given width along the inside of
// img's edges.
func drawBorder(img *image.NRGBA, width int, c color.NRGBA) {
	if width <= 0 {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		edgeRow := y < b.Min.Y+width || y >= b.Max.Y-width
		for x := b.Min.X; x < b.Max.X; x++ {
			if edgeRow || x < b.Min.X+width || x >= b.Max.X-width {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// blend moves every pixel of img toward c by alpha:
// out = alpha*c + (1-alpha)*pixel. Alpha values are kept as they are.
func blend(img *image.NRGBA, c color.NRGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	fr, fg, fb := alpha*float64(c.R), alpha*float64(c.G), alpha*float64(c.B)
	keep := 1 - alpha

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		row := img.Pix[i : i+b.Dx()*4]
		for j := 0; j < len(row); j += 4 {
			row[j+0] = blendChannel(fr, keep, row[j+0])
			row[j+1] = blendChannel(fg, keep, row[j+1])
			row[j+2] = blendChannel(fb, keep, row[j+2])
		}
	}
}

func blendChannel(fg, keep float64, bg uint8) uint8 {
	v := math.Round(fg + keep*float64(bg))
	if v > 255 {
		return 255
	}
	return uint8(v)
}
