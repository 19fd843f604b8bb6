// Package normalize maintains streaming per-band mean/variance statistics
// over the training instances seen so far. The accumulator uses Welford's
// online algorithm for numerical stability and supports exact merging of two
// independently accumulated states, which is how checkpointed runs combine
// a previous run's statistics with newly processed files.
package normalize

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// Stats are the read-out normalizing statistics consumed by model code.
type Stats struct {
	Mean []float64
	Std  []float64
}

// Snapshot pairs a Stats read-out with the fold count it was computed from,
// the unit of merging across runs. A nil Stats marks an unavailable snapshot.
type Snapshot struct {
	Count int
	Stats *Stats
}

// Accumulator is the streaming state: fold count, running per-band mean and
// running sum of squared deviations (M2). It is a value type; Fold and
// FoldSeries return an updated copy and never mutate the receiver, so
// snapshots taken at any point stay valid.
type Accumulator struct {
	N    int
	Mean []float64
	M2   []float64
}

// Fold incorporates one [bands] observation row. The first fold fixes the
// band width; later folds with a different width fail.
func (a Accumulator) Fold(x []float64) (Accumulator, error) {
	if a.N > 0 && len(x) != len(a.Mean) {
		return a, errors.NewDimensionError("normalize.Fold", len(a.Mean), len(x))
	}

	out := Accumulator{
		N:    a.N + 1,
		Mean: make([]float64, len(x)),
		M2:   make([]float64, len(x)),
	}
	if a.N > 0 {
		copy(out.Mean, a.Mean)
		copy(out.M2, a.M2)
	}

	for b, v := range x {
		delta := v - out.Mean[b]
		out.Mean[b] += delta / float64(out.N)
		// the second term uses the updated mean
		out.M2[b] += delta * (v - out.Mean[b])
	}
	return out, nil
}

// FoldSeries incorporates every timestep row of a [timesteps, bands] array.
func (a Accumulator) FoldSeries(x *mat.Dense) (Accumulator, error) {
	rows, _ := x.Dims()
	out := a
	for t := 0; t < rows; t++ {
		var err error
		out, err = out.Fold(x.RawRowView(t))
		if err != nil {
			return a, err
		}
	}
	return out, nil
}

// Stats reads out the accumulated statistics. The second return value is
// false until at least two samples have been folded; variance is the
// unbiased M2/(n-1).
func (a Accumulator) Stats() (*Stats, bool) {
	if a.N < 2 {
		return nil, false
	}
	std := make([]float64, len(a.M2))
	for b, m2 := range a.M2 {
		std[b] = math.Sqrt(m2 / float64(a.N-1))
	}
	mean := make([]float64, len(a.Mean))
	copy(mean, a.Mean)
	return &Stats{Mean: mean, Std: std}, true
}

// Snapshot reads out a mergeable (count, stats) pair.
func (a Accumulator) Snapshot() Snapshot {
	stats, ok := a.Stats()
	if !ok {
		return Snapshot{Count: a.N}
	}
	return Snapshot{Count: a.N, Stats: stats}
}

// Merge combines independently accumulated snapshots into one Stats using
// the parallel variance formula: the combined mean is the count-weighted
// average of the means, and the combined sum of squared deviations is each
// input's M2 (reconstructed from its unbiased standard deviation) plus its
// count times the squared mean offset. The result matches folding all
// underlying samples into a single accumulator, up to rounding, regardless
// of merge order. If any snapshot is unavailable the merge is unavailable.
func Merge(snapshots ...Snapshot) *Stats {
	if len(snapshots) == 0 {
		return nil
	}
	total := 0
	for _, s := range snapshots {
		if s.Stats == nil {
			return nil
		}
		total += s.Count
	}
	if total == 0 {
		return nil
	}

	numBands := len(snapshots[0].Stats.Mean)
	mean := make([]float64, numBands)
	for _, s := range snapshots {
		w := float64(s.Count) / float64(total)
		for b, m := range s.Stats.Mean {
			mean[b] += m * w
		}
	}

	m2 := make([]float64, numBands)
	for _, s := range snapshots {
		for b := range m2 {
			d := s.Stats.Mean[b] - mean[b]
			m2[b] += s.Stats.Std[b]*s.Stats.Std[b]*float64(s.Count-1) + float64(s.Count)*d*d
		}
	}
	std := make([]float64, numBands)
	for b := range std {
		std[b] = math.Sqrt(m2[b] / float64(total-1))
	}

	return &Stats{Mean: mean, Std: std}
}

// Apply standardizes a [timesteps, bands] array as (x-mean)/std. Bands with
// a vanishing standard deviation pass through unscaled to avoid blowing up
// constant features.
func (s *Stats) Apply(x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != len(s.Mean) {
		return nil, errors.NewDimensionError("normalize.Apply", len(s.Mean), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	for t := 0; t < rows; t++ {
		for b := 0; b < cols; b++ {
			scale := s.Std[b]
			if math.Abs(scale) < 1e-8 {
				scale = 1.0
			}
			out.Set(t, b, (x.At(t, b)-s.Mean[b])/scale)
		}
	}
	return out, nil
}
