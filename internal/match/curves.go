package match

import "fmt"

// CurvePoint is one (bucket, count) sample of a histogram curve.
type CurvePoint struct {
	Bucket int
	Count  int
}

// Curve is a single channel histogram of a labelled piece, ready for
// plotting.
type Curve struct {
	Label   string
	Channel Channel
	Points  []CurvePoint
}

// Curves returns the per-channel histogram curves of the target followed by
// the top k ranked pieces (all when k <= 0).
func Curves(target *Piece, r *Ranking, k int) []Curve {
	var curves []Curve
	if target != nil {
		curves = append(curves, pieceCurves("target", target)...)
	}
	if r != nil {
		for rank, p := range r.Top(k) {
			pos, _ := p.Position()
			label := fmt.Sprintf("rank%d_r%d_c%d", rank, pos.Row, pos.Col)
			curves = append(curves, pieceCurves(label, p)...)
		}
	}
	return curves
}

func pieceCurves(label string, p *Piece) []Curve {
	d := p.Distribution()
	out := make([]Curve, 0, len(Channels))
	for _, ch := range Channels {
		points := make([]CurvePoint, Buckets)
		for b, n := range d[ch] {
			points[b] = CurvePoint{Bucket: b, Count: n}
		}
		out = append(out, Curve{Label: label, Channel: ch, Points: points})
	}
	return out
}
