package match

import "image"

// Buckets is the number of intensity buckets per channel histogram.
const Buckets = 256

// Channel indexes a colour channel within a Distribution.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Channels lists the channels in Distribution order.
var Channels = [3]Channel{Red, Green, Blue}

func (c Channel) String() string {
	switch c {
	case Red:
		return "r"
	case Green:
		return "g"
	case Blue:
		return "b"
	default:
		return "?"
	}
}

// Histogram counts pixels per 8-bit intensity value.
type Histogram [Buckets]int

// Total returns the number of pixels counted.
func (h *Histogram) Total() int {
	var n int
	for _, v := range h {
		n += v
	}
	return n
}

// Series returns the counts as float64, as expected by plotting and
// statistics code.
func (h *Histogram) Series() []float64 {
	out := make([]float64, Buckets)
	for i, v := range h {
		out[i] = float64(v)
	}
	return out
}

// Distribution holds one histogram per colour channel, in R, G, B order.
type Distribution [3]Histogram

// Extract computes raw per-channel pixel counts for img. Alpha is ignored.
// No normalisation is applied, so every histogram totals the pixel count.
func Extract(img *image.NRGBA) Distribution {
	var d Distribution
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		row := img.Pix[i : i+b.Dx()*4]
		for j := 0; j < len(row); j += 4 {
			d[Red][row[j+0]]++
			d[Green][row[j+1]]++
			d[Blue][row[j+2]]++
		}
	}
	return d
}
