package raster

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cropgo/bands"
	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// TimeSeries is a raster reorganized along the time axis. Timestep i carries
// the i-th dynamic band block concatenated with the static bands, and is
// stamped start + i*DaysPerTimestep days.
type TimeSeries struct {
	Times []time.Time

	r        *Raster
	cat      *bands.Catalog
	avgSlope float64
}

// Split validates a raster against the catalog's band layout and indexes it
// by timestep. The average slope is the mean of the finite entries of the
// static slope band, kept for the imputation fallback.
func Split(r *Raster, cat *bands.Catalog, start time.Time) (*TimeSeries, error) {
	if r.NumBands() != cat.TotalRawBands() {
		return nil, errors.NewMalformedRasterError("", cat.TotalRawBands(), r.NumBands())
	}

	avgSlope := 0.0
	if si := slopeBand(cat); si >= 0 {
		avgSlope = finiteMean(r.Bands[si])
	}

	times := make([]time.Time, cat.NumTimesteps)
	for i := range times {
		times[i] = start.AddDate(0, 0, i*cat.DaysPerTimestep)
	}

	return &TimeSeries{
		Times:    times,
		r:        r,
		cat:      cat,
		avgSlope: avgSlope,
	}, nil
}

// slopeBand returns the raster band index of the static slope band, or -1
// for catalogs without one.
func slopeBand(cat *bands.Catalog) int {
	for i, name := range cat.Static {
		if name == bands.Slope {
			return cat.BandsPerTimestep()*cat.NumTimesteps + i
		}
	}
	return -1
}

// AverageSlope returns the finite mean of the slope band, NaN when the band
// has no finite pixels.
func (ts *TimeSeries) AverageSlope() float64 {
	return ts.avgSlope
}

// Width returns the raster width in pixels.
func (ts *TimeSeries) Width() int { return ts.r.Width }

// Height returns the raster height in pixels.
func (ts *TimeSeries) Height() int { return ts.r.Height }

// XCoords returns the cell-center x (longitude) axis.
func (ts *TimeSeries) XCoords() []float64 { return ts.r.XCoords }

// YCoords returns the cell-center y (latitude) axis.
func (ts *TimeSeries) YCoords() []float64 { return ts.r.YCoords }

// NumBands returns the band count of one reconstructed timestep.
func (ts *TimeSeries) NumBands() int { return ts.cat.NumRawPerStep() }

// Pixel extracts the [timesteps, bands] series of the pixel at column ix,
// row iy. Each row holds the timestep's dynamic bands followed by the static
// bands.
func (ts *TimeSeries) Pixel(ix, iy int) *mat.Dense {
	bpt := ts.cat.BandsPerTimestep()
	nStatic := ts.cat.NumStatic()
	staticBase := bpt * ts.cat.NumTimesteps

	out := mat.NewDense(ts.cat.NumTimesteps, bpt+nStatic, nil)
	for t := 0; t < ts.cat.NumTimesteps; t++ {
		for b := 0; b < bpt; b++ {
			out.Set(t, b, ts.r.At(t*bpt+b, ix, iy))
		}
		for s := 0; s < nStatic; s++ {
			out.Set(t, bpt+s, ts.r.At(staticBase+s, ix, iy))
		}
	}
	return out
}

// Batch extracts every pixel's series, flattened row-major so that index
// iy*Width+ix matches the Lats/Lons vectors.
func (ts *TimeSeries) Batch() []*mat.Dense {
	out := make([]*mat.Dense, 0, ts.r.Width*ts.r.Height)
	for iy := 0; iy < ts.r.Height; iy++ {
		for ix := 0; ix < ts.r.Width; ix++ {
			out = append(out, ts.Pixel(ix, iy))
		}
	}
	return out
}

// Lats returns the per-pixel latitude vector parallel to Batch.
func (ts *TimeSeries) Lats() []float64 {
	out := make([]float64, 0, ts.r.Width*ts.r.Height)
	for iy := 0; iy < ts.r.Height; iy++ {
		for ix := 0; ix < ts.r.Width; ix++ {
			out = append(out, ts.r.YCoords[iy])
		}
	}
	return out
}

// Lons returns the per-pixel longitude vector parallel to Batch.
func (ts *TimeSeries) Lons() []float64 {
	out := make([]float64, 0, ts.r.Width*ts.r.Height)
	for iy := 0; iy < ts.r.Height; iy++ {
		out = append(out, ts.r.XCoords...)
	}
	return out
}
