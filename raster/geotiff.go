package raster

import (
	"github.com/airbusgeo/godal"

	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// OpenGeoTIFF reads every band of a GeoTIFF into memory and derives the
// cell-center coordinate axes from the geotransform. Axes are reprojected to
// EPSG:4326 when the file carries a spatial reference, so downstream
// coordinates are always latitude/longitude. The dataset handle is closed
// before returning.
//
// Call godal.RegisterAll once before the first open.
func OpenGeoTIFF(path string) (*Raster, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer ds.Close()

	structure := ds.Structure()
	width, height := structure.SizeX, structure.SizeY

	dsBands := ds.Bands()
	data := make([][]float64, len(dsBands))
	for i, band := range dsBands {
		buf := make([]float64, width*height)
		if err := band.Read(0, 0, buf, width, height); err != nil {
			return nil, errors.Wrapf(err, "reading band %d of %s", i+1, path)
		}
		data[i] = buf
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, errors.Wrapf(err, "reading geotransform of %s", path)
	}
	// Rotated grids never occur in the exports and would break the
	// one-dimensional coordinate axes.
	if gt[2] != 0 || gt[4] != 0 {
		return nil, errors.Newf("cropgo: %s: rotated rasters are not supported", path)
	}

	xs := make([]float64, width)
	for i := range xs {
		xs[i] = gt[0] + gt[1]*(float64(i)+0.5)
	}
	ys := make([]float64, height)
	for i := range ys {
		ys[i] = gt[3] + gt[5]*(float64(i)+0.5)
	}

	xs, ys = toLonLat(ds, xs, ys)

	return &Raster{
		Bands:   data,
		Width:   width,
		Height:  height,
		XCoords: xs,
		YCoords: ys,
	}, nil
}

// toLonLat reprojects the coordinate axes to EPSG:4326. Files without a
// spatial reference, and files already in a geographic system, keep their
// axes unchanged (the transform is the identity for the latter).
func toLonLat(ds *godal.Dataset, xs, ys []float64) ([]float64, []float64) {
	srcSR := ds.SpatialRef()
	if srcSR == nil {
		return xs, ys
	}
	defer srcSR.Close()

	dstSR, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return xs, ys
	}
	defer dstSR.Close()

	tr, err := godal.NewTransform(srcSR, dstSR)
	if err != nil {
		return xs, ys
	}
	defer tr.Close()

	midY := ys[len(ys)/2]
	midX := xs[len(xs)/2]

	outX := make([]float64, len(xs))
	copy(outX, xs)
	fillY := make([]float64, len(xs))
	for i := range fillY {
		fillY[i] = midY
	}
	if err := tr.TransformEx(outX, fillY, nil, nil); err != nil {
		return xs, ys
	}

	outY := make([]float64, len(ys))
	copy(outY, ys)
	fillX := make([]float64, len(ys))
	for i := range fillX {
		fillX[i] = midX
	}
	if err := tr.TransformEx(fillX, outY, nil, nil); err != nil {
		return xs, ys
	}

	return outX, outY
}
