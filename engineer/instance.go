// Package engineer drives the feature-engineering pipeline: it joins raw
// raster exports with their label rows, builds training and test instances
// through the band transforms, accumulates normalizing statistics and
// persists everything with checkpoint-aware resumption.
package engineer

import (
	"encoding/gob"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// Instance is one labeled training example: a single pixel's
// [timesteps, bands] feature series. The label coordinate and the sampled
// coordinate may differ because the label is snapped to the raster grid.
type Instance struct {
	Dataset string

	LabelLat float64
	LabelLon float64

	InstanceLat float64
	InstanceLon float64

	// Array is the [timesteps][bands] feature series.
	Array [][]float64

	IsCrop int
	Label  string
}

// Matrix returns the feature series as a dense matrix.
func (inst *Instance) Matrix() *mat.Dense {
	return rowsToMat(inst.Array)
}

// TestInstance is one held-out evaluation region: every pixel's feature
// series plus a parallel ternary label vector (1 positive, 0 negative,
// labels.MissingValue for unlabeled pixels) and per-pixel coordinates.
type TestInstance struct {
	// X is the [pixels][timesteps][bands] feature array.
	X [][][]float64

	Y []int

	Lats []float64
	Lons []float64
}

// SaveInstance writes a training instance to a file in gob encoding.
func SaveInstance(inst *Instance, filename string) error {
	return saveGob(inst, filename)
}

// LoadInstance reads a training instance written by SaveInstance.
func LoadInstance(filename string) (*Instance, error) {
	var inst Instance
	if err := loadGob(&inst, filename); err != nil {
		return nil, err
	}
	return &inst, nil
}

// SaveTestInstance writes a test instance to a file in gob encoding.
func SaveTestInstance(inst *TestInstance, filename string) error {
	return saveGob(inst, filename)
}

// LoadTestInstance reads a test instance written by SaveTestInstance.
func LoadTestInstance(filename string) (*TestInstance, error) {
	var inst TestInstance
	if err := loadGob(&inst, filename); err != nil {
		return nil, err
	}
	return &inst, nil
}

func saveGob(v interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode instance")
	}
	return nil
}

func loadGob(v interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(v); err != nil && err != io.EOF {
		return errors.Wrap(err, "failed to decode instance")
	}
	return nil
}

func matToRows(x *mat.Dense) [][]float64 {
	rows, cols := x.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		copy(out[i], x.RawRowView(i))
	}
	return out
}

func rowsToMat(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		out.SetRow(i, row)
	}
	return out
}
