package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cropgo/bands"
)

// ImputeSeries replaces non-finite entries of a [timesteps, features] array
// with each band's mean over the finite timesteps. When exactly one band has
// no finite entry at all and that band is slope, avgSlope (the file-level
// mean from the loader) substitutes for the missing mean. Any other
// all-missing band makes imputation impossible: the second return value is
// false and the caller skips the instance.
func ImputeSeries(x *mat.Dense, cat *bands.Catalog, avgSlope float64) (*mat.Dense, bool, error) {
	if err := checkWidth("transform.ImputeSeries", x, cat.NumFeatures()); err != nil {
		return nil, false, err
	}

	means := bandMeans([]*mat.Dense{x}, cat.NumFeatures())
	means, ok := resolveMissingMeans(means, cat.FeatureIndex(bands.Slope), avgSlope)
	if !ok {
		return nil, false, nil
	}
	return fillNonFinite(x, means), true, nil
}

// ImputeBatch is the batch form of ImputeSeries. Band means are taken across
// every pixel and timestep, matching the spatial-grid behavior.
func ImputeBatch(xs []*mat.Dense, cat *bands.Catalog, avgSlope float64) ([]*mat.Dense, bool, error) {
	for _, x := range xs {
		if err := checkWidth("transform.ImputeBatch", x, cat.NumFeatures()); err != nil {
			return nil, false, err
		}
	}

	means := bandMeans(xs, cat.NumFeatures())
	means, ok := resolveMissingMeans(means, cat.FeatureIndex(bands.Slope), avgSlope)
	if !ok {
		return nil, false, nil
	}

	out := make([]*mat.Dense, len(xs))
	for i, x := range xs {
		out[i] = fillNonFinite(x, means)
	}
	return out, true, nil
}

// bandMeans averages each band's finite entries over all matrices and rows.
// Bands with no finite entry get NaN.
func bandMeans(xs []*mat.Dense, numBands int) []float64 {
	sums := make([]float64, numBands)
	counts := make([]int, numBands)
	for _, x := range xs {
		rows, _ := x.Dims()
		for t := 0; t < rows; t++ {
			for b := 0; b < numBands; b++ {
				if v := x.At(t, b); isFinite(v) {
					sums[b] += v
					counts[b]++
				}
			}
		}
	}

	means := make([]float64, numBands)
	for b := range means {
		if counts[b] == 0 {
			means[b] = math.NaN()
		} else {
			means[b] = sums[b] / float64(counts[b])
		}
	}
	return means
}

// resolveMissingMeans applies the slope fallback. The substitution happens
// only when slope is the single band without a mean and the fallback itself
// is finite.
func resolveMissingMeans(means []float64, slopeIdx int, avgSlope float64) ([]float64, bool) {
	missing := 0
	for _, m := range means {
		if math.IsNaN(m) {
			missing++
		}
	}
	if missing == 0 {
		return means, true
	}
	if missing == 1 && slopeIdx >= 0 && math.IsNaN(means[slopeIdx]) && isFinite(avgSlope) {
		out := make([]float64, len(means))
		copy(out, means)
		out[slopeIdx] = avgSlope
		return out, true
	}
	return nil, false
}

// fillNonFinite copies x, replacing non-finite entries with the band mean.
func fillNonFinite(x *mat.Dense, means []float64) *mat.Dense {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	for t := 0; t < rows; t++ {
		for b := 0; b < cols; b++ {
			v := x.At(t, b)
			if !isFinite(v) {
				v = means[b]
			}
			out.Set(t, b, v)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
