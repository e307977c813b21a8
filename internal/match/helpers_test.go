package match

import (
	"image"
	"image/color"
)

// cellColor is the pattern used by gridImage: every cell has a red and blue
// level unique to its offset and a green diagonal ramp shared by all cells.
func cellColor(offset, x, y int) color.NRGBA {
	return color.NRGBA{
		R: uint8(offset),
		G: uint8((x + y) % 256),
		B: uint8(255 - offset),
		A: 255,
	}
}

// gridImage builds a reference image of cols x rows cells of pw x ph pixels,
// with extraX/extraY remainder pixels painted white on the far edges.
func gridImage(cols, rows, pw, ph, extraX, extraY int) *image.NRGBA {
	w, h := cols*pw+extraX, rows*ph+extraY
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	white := color.NRGBA{255, 255, 255, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			col, row := x/pw, y/ph
			if col >= cols || row >= rows {
				img.SetNRGBA(x, y, white)
				continue
			}
			img.SetNRGBA(x, y, cellColor(row*cols+col, x%pw, y%ph))
		}
	}
	return img
}

// cellImage returns the pw x ph contents of the cell at offset.
func cellImage(offset, pw, ph int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			img.SetNRGBA(x, y, cellColor(offset, x, y))
		}
	}
	return img
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// partitioned partitions ref and extracts all distributions sequentially.
func partitioned(ref image.Image, grid GridSize) ([]*Piece, Geometry) {
	pieces, geom, err := Partition(ref, grid)
	if err != nil {
		panic(err)
	}
	for _, p := range pieces {
		p.extract()
	}
	return pieces, geom
}

func sameImage(a, b *image.NRGBA) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			if a.NRGBAAt(ab.Min.X+x, ab.Min.Y+y) != b.NRGBAAt(bb.Min.X+x, bb.Min.Y+y) {
				return false
			}
		}
	}
	return true
}
