// Package transform implements the pure band transforms applied to extracted
// time series: NDVI derivation, band removal and NaN imputation. Every
// transform has a series form operating on one [timesteps, bands] matrix and
// a batch form operating on a slice of such matrices (one per pixel); both
// share the same inner computation and never mutate their input.
package transform

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cropgo/bands"
	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// NDVISeries appends an NDVI band computed per timestep as
// (NIR-RED)/(NIR+RED) from the catalog's raw B8/B4 bands. Timesteps whose
// denominator is not strictly positive get NDVI 0 instead of a division
// artifact.
func NDVISeries(x *mat.Dense, cat *bands.Catalog) (*mat.Dense, error) {
	if err := checkWidth("transform.NDVISeries", x, len(cat.Raw())); err != nil {
		return nil, err
	}
	return appendNDVI(x, cat.RawIndex("B8"), cat.RawIndex("B4")), nil
}

// NDVIBatch is the batch form of NDVISeries.
func NDVIBatch(xs []*mat.Dense, cat *bands.Catalog) ([]*mat.Dense, error) {
	nir, red := cat.RawIndex("B8"), cat.RawIndex("B4")
	out := make([]*mat.Dense, len(xs))
	for i, x := range xs {
		if err := checkWidth("transform.NDVIBatch", x, len(cat.Raw())); err != nil {
			return nil, err
		}
		out[i] = appendNDVI(x, nir, red)
	}
	return out, nil
}

// appendNDVI widens x by one trailing band holding the normalized difference
// of the nir and red columns.
func appendNDVI(x *mat.Dense, nir, red int) *mat.Dense {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols+1, nil)
	for t := 0; t < rows; t++ {
		for b := 0; b < cols; b++ {
			out.Set(t, b, x.At(t, b))
		}
		n, r := x.At(t, nir), x.At(t, red)
		ndvi := 0.0
		if n+r > 0 {
			ndvi = (n - r) / (n + r)
		}
		out.Set(t, cols, ndvi)
	}
	return out
}

func checkWidth(op string, x *mat.Dense, want int) error {
	if _, cols := x.Dims(); cols != want {
		return errors.NewDimensionError(op, want, cols)
	}
	return nil
}
