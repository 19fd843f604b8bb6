package labels

import (
	"sync"

	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// BBox is a geographic bounding region in degrees. Bounds are inclusive.
type BBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the coordinate falls inside the region.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

var (
	regionMutex sync.RWMutex

	// held-out evaluation regions, keyed by {region}_{crop}_{year}_{n}
	testRegions = map[string]BBox{
		"Kenya_maize_2020_0":  {MinLat: 0.4702, MaxLat: 0.7221, MinLon: 34.1881, MaxLon: 34.4958},
		"Kenya_maize_2020_1":  {MinLat: 0.6931, MaxLat: 0.7850, MinLon: 34.3003, MaxLon: 34.4802},
		"Brazil_coffee_2020_0": {MinLat: -12.1995, MaxLat: -11.7297, MinLon: -45.9875, MaxLon: -45.3588},
		"Brazil_coffee_2021_0": {MinLat: -12.1995, MaxLat: -11.7297, MinLon: -45.9875, MaxLon: -45.3588},
	}
)

// RegisterRegion adds or replaces the bounding region of a held-out
// identifier.
func RegisterRegion(identifier string, b BBox) {
	regionMutex.Lock()
	defer regionMutex.Unlock()
	testRegions[identifier] = b
}

// Region returns the bounding region registered for a held-out identifier.
func Region(identifier string) (BBox, error) {
	regionMutex.RLock()
	defer regionMutex.RUnlock()
	b, ok := testRegions[identifier]
	if !ok {
		return BBox{}, errors.NewRegionNotFoundError(identifier)
	}
	return b, nil
}
