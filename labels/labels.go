// Package labels holds the ground-truth side of the pipeline: per-point
// label rows joined to raw training files, geographic bounding regions for
// held-out evaluation identifiers, and the rasterization of label geometries
// into per-pixel ternary masks.
package labels

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// Row is one ground-truth point. Rows are uniquely keyed by
// (Dataset, Index), matching the raw export filenames.
type Row struct {
	Dataset       string
	Index         int
	Lat           float64
	Lon           float64
	ExportEndDate time.Time
	IsCrop        int
	Label         string
	Geometry      orb.Geometry
}

// Set is an indexed collection of label rows.
type Set struct {
	rows  []*Row
	byKey map[string]*Row
}

// FromRows indexes rows by (dataset, index). Duplicate keys fail.
func FromRows(rows []*Row) (*Set, error) {
	s := &Set{rows: rows, byKey: make(map[string]*Row, len(rows))}
	for _, r := range rows {
		k := key(r.Dataset, r.Index)
		if _, dup := s.byKey[k]; dup {
			return nil, errors.Newf("cropgo: duplicate label key %s", k)
		}
		s.byKey[k] = r
	}
	return s, nil
}

// Get returns the unique row for (dataset, index).
func (s *Set) Get(dataset string, index int) (*Row, error) {
	r, ok := s.byKey[key(dataset, index)]
	if !ok {
		return nil, errors.NewLabelNotFoundError(dataset, index)
	}
	return r, nil
}

// Rows returns all rows in load order.
func (s *Set) Rows() []*Row {
	return s.rows
}

// Len returns the number of rows.
func (s *Set) Len() int {
	return len(s.rows)
}

func key(dataset string, index int) string {
	return fmt.Sprintf("%d_%s", index, dataset)
}

// LoadGeoJSON reads label rows from a GeoJSON feature collection. Feature
// properties supply the attributes; the feature geometry is kept for
// rasterization.
func LoadGeoJSON(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading label file")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing label geojson")
	}

	rows := make([]*Row, 0, len(fc.Features))
	for i, f := range fc.Features {
		row, err := rowFromFeature(f)
		if err != nil {
			return nil, errors.Wrapf(err, "label feature %d", i)
		}
		rows = append(rows, row)
	}
	return FromRows(rows)
}

func rowFromFeature(f *geojson.Feature) (*Row, error) {
	dataset, err := propString(f.Properties, "dataset")
	if err != nil {
		return nil, err
	}
	index, err := propInt(f.Properties, "index")
	if err != nil {
		return nil, err
	}
	lat, err := propFloat(f.Properties, "lat")
	if err != nil {
		return nil, err
	}
	lon, err := propFloat(f.Properties, "lon")
	if err != nil {
		return nil, err
	}
	rawDate, err := propString(f.Properties, "export_end_date")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(rawDate)
	if err != nil {
		return nil, err
	}
	isCrop, err := propInt(f.Properties, "is_crop")
	if err != nil {
		return nil, err
	}

	label := ""
	if v, ok := f.Properties["label"]; ok && v != nil {
		label, _ = v.(string)
	}

	return &Row{
		Dataset:       dataset,
		Index:         index,
		Lat:           lat,
		Lon:           lon,
		ExportEndDate: endDate,
		IsCrop:        isCrop,
		Label:         label,
		Geometry:      f.Geometry,
	}, nil
}

// csvRow is the flat CSV shape of a label row. CSV label files carry no
// geometry; the point coordinate stands in for it.
type csvRow struct {
	Dataset       string  `csv:"dataset"`
	Index         int     `csv:"index"`
	Lat           float64 `csv:"lat"`
	Lon           float64 `csv:"lon"`
	ExportEndDate string  `csv:"export_end_date"`
	IsCrop        int     `csv:"is_crop"`
	Label         string  `csv:"label"`
}

// LoadCSV reads label rows from a CSV file with a header row.
func LoadCSV(path string) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening label file")
	}
	defer file.Close()

	var raw []*csvRow
	if err := gocsv.UnmarshalFile(file, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing label csv")
	}

	rows := make([]*Row, 0, len(raw))
	for i, c := range raw {
		endDate, err := parseDate(c.ExportEndDate)
		if err != nil {
			return nil, errors.Wrapf(err, "label row %d", i)
		}
		rows = append(rows, &Row{
			Dataset:       c.Dataset,
			Index:         c.Index,
			Lat:           c.Lat,
			Lon:           c.Lon,
			ExportEndDate: endDate,
			IsCrop:        c.IsCrop,
			Label:         c.Label,
			Geometry:      orb.Point{c.Lon, c.Lat},
		})
	}
	return FromRows(rows)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Newf("cropgo: unparseable export_end_date %q", s)
	}
	return t, nil
}

func propString(p geojson.Properties, name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", errors.Newf("cropgo: missing label property %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Newf("cropgo: label property %q is not a string", name)
	}
	return s, nil
}

func propFloat(p geojson.Properties, name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, errors.Newf("cropgo: missing label property %q", name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errors.Newf("cropgo: label property %q is not a number", name)
	}
	return f, nil
}

func propInt(p geojson.Properties, name string) (int, error) {
	f, err := propFloat(p, name)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
