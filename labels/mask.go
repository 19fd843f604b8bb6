package labels

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MissingValue marks pixels covered by neither positive nor negative
// geometries in a ternary mask. Downstream scoring excludes these pixels.
const MissingValue = -1

// TernaryMask rasterizes positive and negative label geometries onto a
// flattened pixel grid. lats/lons are the per-pixel cell centers, cellH and
// cellW the cell sizes in degrees. Each pixel is 1 inside a positive
// geometry, 0 inside a negative geometry and MissingValue inside neither.
// The negative set is applied first and positives override it, so a pixel
// covered by both is positive.
func TernaryMask(lats, lons []float64, cellH, cellW float64, positives, negatives []orb.Geometry) []int {
	halfH := math.Abs(cellH) / 2
	halfW := math.Abs(cellW) / 2

	y := make([]int, len(lats))
	for i := range y {
		y[i] = MissingValue
		if containsAny(negatives, lats[i], lons[i], halfH, halfW) {
			y[i] = 0
		}
		if containsAny(positives, lats[i], lons[i], halfH, halfW) {
			y[i] = 1
		}
	}
	return y
}

func containsAny(geoms []orb.Geometry, lat, lon, halfH, halfW float64) bool {
	for _, g := range geoms {
		if contains(g, lat, lon, halfH, halfW) {
			return true
		}
	}
	return false
}

// contains tests one geometry against one pixel. Polygons use planar
// containment of the cell center; point-like geometries mark the cell whose
// extent they fall in.
func contains(g orb.Geometry, lat, lon, halfH, halfW float64) bool {
	center := orb.Point{lon, lat}
	switch geom := g.(type) {
	case orb.Point:
		return math.Abs(geom[0]-lon) <= halfW && math.Abs(geom[1]-lat) <= halfH
	case orb.MultiPoint:
		for _, p := range geom {
			if math.Abs(p[0]-lon) <= halfW && math.Abs(p[1]-lat) <= halfH {
				return true
			}
		}
		return false
	case orb.Polygon:
		return planar.PolygonContains(geom, center)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, center)
	case orb.Collection:
		for _, sub := range geom {
			if contains(sub, lat, lon, halfH, halfW) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
