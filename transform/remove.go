package transform

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cropgo/bands"
)

// RemoveBandsSeries drops the catalog's removed raw bands from the band
// axis, preserving the relative order of the remaining bands. It runs after
// NDVI derivation, so the expected input width is the raw order plus the
// appended NDVI band; the result has the final feature width.
func RemoveBandsSeries(x *mat.Dense, cat *bands.Catalog) (*mat.Dense, error) {
	if err := checkWidth("transform.RemoveBandsSeries", x, len(cat.Raw())+1); err != nil {
		return nil, err
	}
	return removeColumns(x, cat.RemovedRawIndices()), nil
}

// RemoveBandsBatch is the batch form of RemoveBandsSeries.
func RemoveBandsBatch(xs []*mat.Dense, cat *bands.Catalog) ([]*mat.Dense, error) {
	removed := cat.RemovedRawIndices()
	out := make([]*mat.Dense, len(xs))
	for i, x := range xs {
		if err := checkWidth("transform.RemoveBandsBatch", x, len(cat.Raw())+1); err != nil {
			return nil, err
		}
		out[i] = removeColumns(x, removed)
	}
	return out, nil
}

func removeColumns(x *mat.Dense, removed []int) *mat.Dense {
	rows, cols := x.Dims()

	drop := make(map[int]bool, len(removed))
	for _, idx := range removed {
		drop[idx] = true
	}
	keep := make([]int, 0, cols-len(removed))
	for b := 0; b < cols; b++ {
		if !drop[b] {
			keep = append(keep, b)
		}
	}

	out := mat.NewDense(rows, len(keep), nil)
	for t := 0; t < rows; t++ {
		for j, b := range keep {
			out.Set(t, j, x.At(t, b))
		}
	}
	return out
}
