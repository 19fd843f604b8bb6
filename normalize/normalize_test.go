package normalize

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func foldAll(t *testing.T, acc Accumulator, rows [][]float64) Accumulator {
	t.Helper()
	for _, row := range rows {
		var err error
		acc, err = acc.Fold(row)
		require.NoError(t, err)
	}
	return acc
}

func TestStatsUnavailableBelowTwoSamples(t *testing.T) {
	var acc Accumulator

	_, ok := acc.Stats()
	assert.False(t, ok, "empty accumulator must be unavailable")

	acc, err := acc.Fold([]float64{1.0, 2.0})
	require.NoError(t, err)
	_, ok = acc.Stats()
	assert.False(t, ok, "single sample must be unavailable")

	acc, err = acc.Fold([]float64{3.0, 4.0})
	require.NoError(t, err)
	stats, ok := acc.Stats()
	require.True(t, ok, "two samples must be available")
	assert.InDelta(t, 2.0, stats.Mean[0], 1e-12)
	assert.InDelta(t, 3.0, stats.Mean[1], 1e-12)
	// unbiased: var = ((1-2)^2+(3-2)^2)/1 = 2
	assert.InDelta(t, math.Sqrt(2), stats.Std[0], 1e-12)
}

func TestFoldMatchesDirectComputation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := make([][]float64, 500)
	for i := range rows {
		rows[i] = []float64{rng.NormFloat64() * 3.5, rng.Float64() * 100}
	}

	acc := foldAll(t, Accumulator{}, rows)
	stats, ok := acc.Stats()
	require.True(t, ok)

	for b := 0; b < 2; b++ {
		sum := 0.0
		for _, r := range rows {
			sum += r[b]
		}
		mean := sum / float64(len(rows))
		ss := 0.0
		for _, r := range rows {
			ss += (r[b] - mean) * (r[b] - mean)
		}
		std := math.Sqrt(ss / float64(len(rows)-1))

		assert.InDelta(t, mean, stats.Mean[b], 1e-9)
		assert.InDelta(t, std, stats.Std[b], 1e-9)
	}
}

func TestFoldOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	rows := make([][]float64, 200)
	for i := range rows {
		rows[i] = []float64{rng.NormFloat64(), rng.NormFloat64() * 10}
	}

	forward := foldAll(t, Accumulator{}, rows)

	reversed := make([][]float64, len(rows))
	for i := range rows {
		reversed[i] = rows[len(rows)-1-i]
	}
	backward := foldAll(t, Accumulator{}, reversed)

	fs, ok := forward.Stats()
	require.True(t, ok)
	bs, ok := backward.Stats()
	require.True(t, ok)
	for b := 0; b < 2; b++ {
		assert.InDelta(t, fs.Mean[b], bs.Mean[b], 1e-9)
		assert.InDelta(t, fs.Std[b], bs.Std[b], 1e-9)
	}
}

func TestFoldIsPure(t *testing.T) {
	acc, err := Accumulator{}.Fold([]float64{1.0})
	require.NoError(t, err)
	before := acc.Mean[0]

	_, err = acc.Fold([]float64{100.0})
	require.NoError(t, err)
	assert.Equal(t, before, acc.Mean[0], "Fold must not mutate the receiver")
}

func TestFoldRejectsWidthChange(t *testing.T) {
	acc, err := Accumulator{}.Fold([]float64{1.0, 2.0})
	require.NoError(t, err)

	_, err = acc.Fold([]float64{1.0})
	assert.Error(t, err)
}

func TestFoldSeries(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
		3.0, 30.0,
	})

	acc, err := Accumulator{}.FoldSeries(x)
	require.NoError(t, err)
	assert.Equal(t, 3, acc.N)

	stats, ok := acc.Stats()
	require.True(t, ok)
	assert.InDelta(t, 2.0, stats.Mean[0], 1e-12)
	assert.InDelta(t, 20.0, stats.Mean[1], 1e-12)
}

func TestMergeMatchesSequentialFold(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	a := make([][]float64, 120)
	b := make([][]float64, 80)
	for i := range a {
		a[i] = []float64{rng.NormFloat64() * 2, rng.NormFloat64() + 5}
	}
	for i := range b {
		b[i] = []float64{rng.NormFloat64()*2 + 1, rng.NormFloat64() - 3}
	}

	accA := foldAll(t, Accumulator{}, a)
	accB := foldAll(t, Accumulator{}, b)
	combined := foldAll(t, foldAll(t, Accumulator{}, a), b)

	want, ok := combined.Stats()
	require.True(t, ok)

	merged := Merge(accA.Snapshot(), accB.Snapshot())
	require.NotNil(t, merged)
	reversed := Merge(accB.Snapshot(), accA.Snapshot())
	require.NotNil(t, reversed)

	for band := 0; band < 2; band++ {
		assert.InDelta(t, want.Mean[band], merged.Mean[band], 1e-9)
		assert.InDelta(t, want.Std[band], merged.Std[band], 1e-9)
		assert.InDelta(t, merged.Mean[band], reversed.Mean[band], 1e-12)
		assert.InDelta(t, merged.Std[band], reversed.Std[band], 1e-12)
	}
}

func TestMergeCheckpointScenario(t *testing.T) {
	// a prior run folded 100 samples at mean 1.0, the new run 50 at mean 2.0,
	// both with zero variance
	old := Snapshot{Count: 100, Stats: &Stats{Mean: []float64{1.0}, Std: []float64{0.0}}}
	fresh := Snapshot{Count: 50, Stats: &Stats{Mean: []float64{2.0}, Std: []float64{0.0}}}

	merged := Merge(old, fresh)
	require.NotNil(t, merged)
	assert.InDelta(t, (100*1.0+50*2.0)/150.0, merged.Mean[0], 1e-12)

	// all squared deviation comes from the mean offsets:
	// 100*(1-4/3)^2 + 50*(2-4/3)^2 = 100/3, unbiased over 149
	assert.InDelta(t, math.Sqrt((100.0/3.0)/149.0), merged.Std[0], 1e-12)
}

func TestMergeUnavailablePropagates(t *testing.T) {
	ok := Snapshot{Count: 10, Stats: &Stats{Mean: []float64{1}, Std: []float64{1}}}
	missing := Snapshot{Count: 1}

	assert.Nil(t, Merge(ok, missing))
	assert.Nil(t, Merge())
}

func TestApplyStandardizes(t *testing.T) {
	stats := &Stats{Mean: []float64{2.0, 0.0}, Std: []float64{2.0, 0.0}}
	x := mat.NewDense(2, 2, []float64{
		4.0, 7.0,
		0.0, -7.0,
	})

	got, err := stats.Apply(x)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.At(0, 0), 1e-12)
	assert.InDelta(t, -1.0, got.At(1, 0), 1e-12)
	// zero-std band passes through unscaled
	assert.InDelta(t, 7.0, got.At(0, 1), 1e-12)

	_, err = stats.Apply(mat.NewDense(1, 3, nil))
	assert.Error(t, err)
}

func TestStatsGobRoundTrip(t *testing.T) {
	stats := &Stats{Mean: []float64{1.5, -2.25}, Std: []float64{0.5, 3.0}}

	var buf bytes.Buffer
	require.NoError(t, SaveStatsToWriter(stats, &buf))

	got, err := LoadStatsFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}
