package labels

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

func TestSetLookup(t *testing.T) {
	set, err := FromRows([]*Row{
		{Dataset: "geowiki-landcover-2017", Index: 0, IsCrop: 1},
		{Dataset: "geowiki-landcover-2017", Index: 1, IsCrop: 0},
		{Dataset: "kenya-non-crop", Index: 0, IsCrop: 0},
	})
	require.NoError(t, err)

	row, err := set.Get("geowiki-landcover-2017", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, row.IsCrop)

	_, err = set.Get("geowiki-landcover-2017", 99)
	var notFound *errors.LabelNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 99, notFound.Index)
}

func TestFromRowsRejectsDuplicateKeys(t *testing.T) {
	_, err := FromRows([]*Row{
		{Dataset: "geowiki-landcover-2017", Index: 3},
		{Dataset: "geowiki-landcover-2017", Index: 3},
	})
	assert.Error(t, err)
}

func TestLoadGeoJSON(t *testing.T) {
	content := `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [34.21, 0.52]},
				"properties": {
					"dataset": "kenya-one-acre-fund",
					"index": 4,
					"lat": 0.52,
					"lon": 34.21,
					"export_end_date": "2020-02-01",
					"is_crop": 1,
					"label": "maize"
				}
			},
			{
				"type": "Feature",
				"geometry": {"type": "Polygon", "coordinates": [[[34.0, 0.5], [34.1, 0.5], [34.1, 0.6], [34.0, 0.6], [34.0, 0.5]]]},
				"properties": {
					"dataset": "kenya-non-crop",
					"index": 0,
					"lat": 0.55,
					"lon": 34.05,
					"export_end_date": "2020-02-01",
					"is_crop": 0,
					"label": null
				}
			}
		]
	}`
	path := filepath.Join(t.TempDir(), "labels.geojson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadGeoJSON(path)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	row, err := set.Get("kenya-one-acre-fund", 4)
	require.NoError(t, err)
	assert.Equal(t, "maize", row.Label)
	assert.Equal(t, 1, row.IsCrop)
	assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), row.ExportEndDate)
	_, isPoint := row.Geometry.(orb.Point)
	assert.True(t, isPoint)

	poly, err := set.Get("kenya-non-crop", 0)
	require.NoError(t, err)
	assert.Empty(t, poly.Label)
	_, isPolygon := poly.Geometry.(orb.Polygon)
	assert.True(t, isPolygon)
}

func TestLoadCSV(t *testing.T) {
	content := "dataset,index,lat,lon,export_end_date,is_crop,label\n" +
		"geowiki-landcover-2017,12,7.72,4.39,2017-02-01,1,\n" +
		"togo-crops,3,6.13,1.22,2019-02-01,0,non-crop\n"
	path := filepath.Join(t.TempDir(), "labels.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	row, err := set.Get("geowiki-landcover-2017", 12)
	require.NoError(t, err)
	assert.Equal(t, 7.72, row.Lat)
	assert.Equal(t, orb.Point{4.39, 7.72}, row.Geometry)
	assert.Equal(t, 2017, row.ExportEndDate.Year())
}

func TestBBoxContains(t *testing.T) {
	b := BBox{MinLat: 0.47, MaxLat: 0.72, MinLon: 34.18, MaxLon: 34.49}

	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{name: "inside", lat: 0.55, lon: 34.30, want: true},
		{name: "on boundary", lat: 0.47, lon: 34.18, want: true},
		{name: "north of region", lat: 0.80, lon: 34.30, want: false},
		{name: "west of region", lat: 0.55, lon: 34.00, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.lat, tt.lon); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

func TestRegionRegistry(t *testing.T) {
	_, err := Region("Kenya_maize_2020_0")
	require.NoError(t, err)

	_, err = Region("Atlantis_kelp_2020_0")
	var notFound *errors.RegionNotFoundError
	require.True(t, errors.As(err, &notFound))

	RegisterRegion("Togo_crop_2019_0", BBox{MinLat: 6.0, MaxLat: 6.5, MinLon: 1.0, MaxLon: 1.5})
	b, err := Region("Togo_crop_2019_0")
	require.NoError(t, err)
	assert.True(t, b.Contains(6.2, 1.2))
}

func square(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

func TestTernaryMask(t *testing.T) {
	// 3x1 grid of cell centers, 0.1 degree cells
	lats := []float64{0.50, 0.50, 0.50}
	lons := []float64{34.10, 34.20, 34.30}

	positive := square(34.05, 0.45, 34.15, 0.55) // covers pixel 0
	negative := square(34.05, 0.45, 34.25, 0.55) // covers pixels 0 and 1

	y := TernaryMask(lats, lons, 0.1, 0.1,
		[]orb.Geometry{positive}, []orb.Geometry{negative})

	// overlap resolves positive, untouched pixel is missing
	assert.Equal(t, []int{1, 0, MissingValue}, y)
}

func TestTernaryMaskPointMarksItsCell(t *testing.T) {
	lats := []float64{0.50, 0.50}
	lons := []float64{34.10, 34.20}

	point := orb.Point{34.22, 0.48} // inside cell 1's extent

	y := TernaryMask(lats, lons, 0.1, 0.1, []orb.Geometry{point}, nil)
	assert.Equal(t, []int{MissingValue, 1}, y)
}

func TestTernaryMaskEmptyGeometriesAllMissing(t *testing.T) {
	lats := []float64{0.50, 0.51}
	lons := []float64{34.10, 34.20}

	y := TernaryMask(lats, lons, 0.1, 0.1, nil, nil)
	assert.Equal(t, []int{MissingValue, MissingValue}, y)
}
