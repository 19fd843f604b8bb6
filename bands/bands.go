// Package bands defines the band catalog for exported satellite rasters:
// which bands each timestep carries, which raw bands are dropped, and the
// final feature order consumed by downstream models.
package bands

import "time"

// Export layout constants. Each raw file holds NumTimesteps blocks of dynamic
// bands followed by the static bands, and every export window ends on
// ExportEndMonth/ExportEndDay of the labeled year.
const (
	NumTimesteps    = 12
	DaysPerTimestep = 30

	ExportEndMonth = time.February
	ExportEndDay   = 1
)

// NDVI is the derived vegetation index band appended last in the feature
// order, computed from the near-infrared and red bands.
const NDVI = "NDVI"

// Slope is the static band whose all-missing pixels may fall back to the
// file-level average during imputation.
const Slope = "slope"

// Catalog is an ordered description of the bands in one export. The default
// catalog matches the production exports; tests construct smaller ones.
type Catalog struct {
	// Dynamic bands are sampled once per timestep, in export order.
	Dynamic []string

	// Static bands trail the file and are constant across time.
	Static []string

	// Removed lists raw dynamic bands dropped from the feature order.
	Removed []string

	// NumTimesteps and DaysPerTimestep describe the export time axis.
	NumTimesteps    int
	DaysPerTimestep int
}

// Default returns the catalog of the production exports: Sentinel-1
// VV/VH, the thirteen Sentinel-2 reflectance bands, two ERA5 climate bands,
// and static elevation/slope. B1 and B10 are dropped from the features.
func Default() *Catalog {
	return &Catalog{
		Dynamic: []string{
			"VV", "VH",
			"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B8A", "B9", "B10", "B11", "B12",
			"temperature_2m", "total_precipitation",
		},
		Static:          []string{"elevation", Slope},
		Removed:         []string{"B1", "B10"},
		NumTimesteps:    NumTimesteps,
		DaysPerTimestep: DaysPerTimestep,
	}
}

// Raw returns the per-timestep band order as stored in a raw file: dynamic
// bands followed by static bands.
func (c *Catalog) Raw() []string {
	out := make([]string, 0, len(c.Dynamic)+len(c.Static))
	out = append(out, c.Dynamic...)
	out = append(out, c.Static...)
	return out
}

// Feature returns the final feature band order: dynamic minus removed, then
// static, then NDVI appended last.
func (c *Catalog) Feature() []string {
	out := make([]string, 0, len(c.Dynamic)+len(c.Static)+1)
	for _, name := range c.Dynamic {
		if !c.isRemoved(name) {
			out = append(out, name)
		}
	}
	out = append(out, c.Static...)
	out = append(out, NDVI)
	return out
}

// RawIndex returns the index of name in the raw per-timestep order, or -1.
func (c *Catalog) RawIndex(name string) int {
	return indexOf(c.Raw(), name)
}

// FeatureIndex returns the index of name in the final feature order, or -1.
func (c *Catalog) FeatureIndex(name string) int {
	return indexOf(c.Feature(), name)
}

// RemovedRawIndices returns the raw indices of the removed bands, ascending.
func (c *Catalog) RemovedRawIndices() []int {
	raw := c.Raw()
	out := make([]int, 0, len(c.Removed))
	for i, name := range raw {
		if c.isRemoved(name) {
			out = append(out, i)
		}
	}
	return out
}

// BandsPerTimestep returns the number of dynamic bands in one timestep block.
func (c *Catalog) BandsPerTimestep() int {
	return len(c.Dynamic)
}

// NumStatic returns the number of trailing static bands.
func (c *Catalog) NumStatic() int {
	return len(c.Static)
}

// TotalRawBands returns the band count a well-formed raw file must have.
func (c *Catalog) TotalRawBands() int {
	return c.BandsPerTimestep()*c.NumTimesteps + c.NumStatic()
}

// NumRawPerStep returns the band count of one reconstructed timestep:
// its dynamic block plus the static bands.
func (c *Catalog) NumRawPerStep() int {
	return c.BandsPerTimestep() + c.NumStatic()
}

// NumFeatures returns the width of the final feature band axis.
func (c *Catalog) NumFeatures() int {
	return len(c.Feature())
}

func (c *Catalog) isRemoved(name string) bool {
	return indexOf(c.Removed, name) >= 0
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
