package match

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// legacyChannel is the only channel ScoringLegacy looks at.
const legacyChannel = Red

// Intersect returns the histogram intersection of a and b: the sum over all
// buckets of the smaller count. It is commutative and bounded by the smaller
// of the two totals.
func Intersect(a, b *Histogram) int {
	var sum int
	for i := range a {
		sum += min(a[i], b[i])
	}
	return sum
}

// Correlation returns the Pearson correlation of the bucket counts of a and
// b. If either histogram has no variance the result is 1.
func Correlation(a, b *Histogram) float64 {
	c := stat.Correlation(a.Series(), b.Series(), nil)
	if math.IsNaN(c) {
		return 1
	}
	return c
}

func compareChannel(a, b *Histogram, metric Metric) float64 {
	if metric == MetricCorrelation {
		return Correlation(a, b)
	}
	return float64(Intersect(a, b))
}

// Similarity scores a reference distribution against the target's. Higher
// is more similar. With MetricIntersection and ScoringSum the result is the
// mean of the three channel intersections, so an identical piece scores
// its pixel count.
func Similarity(ref, target Distribution, metric Metric, mode ScoringMode) float64 {
	if mode == ScoringLegacy {
		return compareChannel(&target[legacyChannel], &ref[legacyChannel], metric) / 3
	}

	var sum float64
	for _, ch := range Channels {
		sum += compareChannel(&target[ch], &ref[ch], metric)
	}
	return sum / 3
}
