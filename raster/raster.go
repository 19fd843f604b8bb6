// Package raster reads exported multi-band raster files and reconstructs
// their temporal structure. A raw export stores every timestep's dynamic
// bands back to back, followed by the static bands; Split turns that flat
// band stack into a time-indexed series.
package raster

import "math"

// Raster is a raw multi-band raster held in memory. Bands is band-major;
// each band holds Width*Height pixels in row-major order. XCoords and
// YCoords are the cell-center coordinate axes (longitude and latitude for
// geographic rasters).
type Raster struct {
	Bands   [][]float64
	Width   int
	Height  int
	XCoords []float64
	YCoords []float64
}

// NumBands returns the number of raster bands.
func (r *Raster) NumBands() int {
	return len(r.Bands)
}

// At returns the value of band b at column ix, row iy.
func (r *Raster) At(b, ix, iy int) float64 {
	return r.Bands[b][iy*r.Width+ix]
}

// NearestIndex returns the index of the axis entry closest to v by absolute
// difference. The returned index always addresses a member of the axis, so
// snapped coordinates are never interpolated.
func NearestIndex(axis []float64, v float64) int {
	best := 0
	bestDiff := math.Inf(1)
	for i, a := range axis {
		if d := math.Abs(a - v); d < bestDiff {
			bestDiff = d
			best = i
		}
	}
	return best
}

// finiteMean averages the finite entries of values. It returns NaN when no
// entry is finite.
func finiteMean(values []float64) float64 {
	sum := 0.0
	n := 0
	for _, v := range values {
		if isFinite(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
