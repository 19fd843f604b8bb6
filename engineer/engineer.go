package engineer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/YuminosukeSato/cropgo/bands"
	"github.com/YuminosukeSato/cropgo/labels"
	"github.com/YuminosukeSato/cropgo/normalize"
	"github.com/YuminosukeSato/cropgo/pkg/errors"
	croplog "github.com/YuminosukeSato/cropgo/pkg/log"
	"github.com/YuminosukeSato/cropgo/raster"
	"github.com/YuminosukeSato/cropgo/transform"
)

const (
	eoDirName     = "eo_data"
	testEoDirName = "test_eo_data"

	featuresDirName     = "features"
	arraysDirName       = "arrays"
	testFeaturesDirName = "test_features"

	manifestFileName = "manifest.gob"
	statsFileName    = "normalizing_stats.gob"
)

// OpenFunc reads a raster file into memory. The default is
// raster.OpenGeoTIFF; tests substitute synthetic rasters.
type OpenFunc func(path string) (*raster.Raster, error)

// Engineer turns a folder of raw exports into persisted training and test
// instances. Files are processed one at a time; a raster is read, built and
// released before the next one is opened.
type Engineer struct {
	cat    *bands.Catalog
	labels *labels.Set
	logger zerolog.Logger

	eoDir     string
	testEoDir string

	saveDir     string
	arraysDir   string
	testSaveDir string

	open OpenFunc

	// ShowProgress draws a progress bar over file enumeration.
	ShowProgress bool
}

// New creates an Engineer over a data folder laid out as
// {dataFolder}/eo_data, {dataFolder}/test_eo_data, creating the output
// directories {dataFolder}/features/arrays and {dataFolder}/test_features.
func New(dataFolder string, set *labels.Set, cat *bands.Catalog, logger zerolog.Logger) (*Engineer, error) {
	e := &Engineer{
		cat:          cat,
		labels:       set,
		logger:       logger,
		eoDir:        filepath.Join(dataFolder, eoDirName),
		testEoDir:    filepath.Join(dataFolder, testEoDirName),
		saveDir:      filepath.Join(dataFolder, featuresDirName),
		arraysDir:    filepath.Join(dataFolder, featuresDirName, arraysDirName),
		testSaveDir:  filepath.Join(dataFolder, testFeaturesDirName),
		open:         raster.OpenGeoTIFF,
		ShowProgress: true,
	}
	for _, dir := range []string{e.saveDir, e.arraysDir, e.testSaveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating output directory")
		}
	}
	return e, nil
}

// BuildInstance builds one training instance from a raster file and its
// label row. A nil instance with a nil error means the instance was
// unimputable and must be skipped; the caller decides whether to fold the
// returned instance into its normalizer.
func (e *Engineer) BuildInstance(path string, row *labels.Row) (inst *Instance, err error) {
	defer errors.Recover(&err, "Engineer.BuildInstance")

	start := row.ExportEndDate.AddDate(0, 0, -e.cat.NumTimesteps*e.cat.DaysPerTimestep)

	r, err := e.open(path)
	if err != nil {
		return nil, err
	}
	ts, err := raster.Split(r, e.cat, start)
	if err != nil {
		return nil, errors.Wrapf(err, "splitting %s", path)
	}

	ix := raster.NearestIndex(ts.XCoords(), row.Lon)
	iy := raster.NearestIndex(ts.YCoords(), row.Lat)

	x := ts.Pixel(ix, iy)
	x, err = transform.NDVISeries(x, e.cat)
	if err != nil {
		return nil, err
	}
	x, err = transform.RemoveBandsSeries(x, e.cat)
	if err != nil {
		return nil, err
	}
	filled, ok, err := transform.ImputeSeries(x, e.cat, ts.AverageSlope())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return &Instance{
		Dataset:     row.Dataset,
		LabelLat:    row.Lat,
		LabelLon:    row.Lon,
		InstanceLat: ts.YCoords()[iy],
		InstanceLon: ts.XCoords()[ix],
		Array:       matToRows(filled),
		IsCrop:      row.IsCrop,
		Label:       row.Label,
	}, nil
}

// BuildTestInstance builds the evaluation instance of one held-out raster.
// The filename supplies the identifier, target crop and export end year. An
// unimputable raster is an error: the whole file is unusable.
func (e *Engineer) BuildTestInstance(path string) (identifier string, inst *TestInstance, err error) {
	defer errors.Recover(&err, "Engineer.BuildTestInstance")

	identifier, crop, year, err := ParseTestFilename(filepath.Base(path))
	if err != nil {
		return "", nil, err
	}

	end := time.Date(year, bands.ExportEndMonth, bands.ExportEndDay, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -e.cat.NumTimesteps*e.cat.DaysPerTimestep)

	r, err := e.open(path)
	if err != nil {
		return "", nil, err
	}
	ts, err := raster.Split(r, e.cat, start)
	if err != nil {
		return "", nil, errors.Wrapf(err, "splitting %s", path)
	}

	batch := ts.Batch()
	batch, err = transform.NDVIBatch(batch, e.cat)
	if err != nil {
		return "", nil, err
	}
	batch, err = transform.RemoveBandsBatch(batch, e.cat)
	if err != nil {
		return "", nil, err
	}
	filled, ok, err := transform.ImputeBatch(batch, e.cat, ts.AverageSlope())
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, errors.Newf("cropgo: test raster %s has an unimputable band", path)
	}

	bbox, err := labels.Region(identifier)
	if err != nil {
		return "", nil, err
	}

	var positives, negatives []orb.Geometry
	for _, row := range e.labels.Rows() {
		if !bbox.Contains(row.Lat, row.Lon) || row.ExportEndDate.Year() != year {
			continue
		}
		if row.Label == crop {
			positives = append(positives, row.Geometry)
		} else {
			negatives = append(negatives, row.Geometry)
		}
	}

	lats, lons := ts.Lats(), ts.Lons()
	y := labels.TernaryMask(lats, lons, axisStep(ts.YCoords()), axisStep(ts.XCoords()),
		positives, negatives)

	x := make([][][]float64, len(filled))
	for i, series := range filled {
		x[i] = matToRows(series)
	}

	return identifier, &TestInstance{X: x, Y: y, Lats: lats, Lons: lons}, nil
}

// CreateDataset processes every raw training export, persisting one
// instance per file and the merged normalizing statistics. With checkpoint
// set, files recorded in the resume manifest (or whose output already
// exists) are skipped entirely and never re-folded; the previous run's
// statistics snapshot is merged with the new folds only.
func (e *Engineer) CreateDataset(checkpoint bool) error {
	manifestPath := filepath.Join(e.saveDir, manifestFileName)
	statsPath := filepath.Join(e.saveDir, statsFileName)

	manifest := NewManifest()
	var previous normalize.Snapshot
	if checkpoint {
		m, err := LoadManifest(manifestPath)
		if err != nil {
			return err
		}
		manifest = m
		previous = m.Snapshot()
	}

	files, err := enumerate(e.eoDir)
	if err != nil {
		return err
	}
	bar := e.newBar(len(files), "processing eo files")

	var acc normalize.Accumulator
	written, skipped, failed := 0, 0, 0

	for _, path := range files {
		e.barAdd(bar)

		index, dataset, err := ParseTrainingFilename(filepath.Base(path))
		if err != nil {
			failed++
			e.logger.Error().Stack().Err(err).Str(croplog.PathKey, path).Msg("unparseable filename")
			continue
		}
		name := fmt.Sprintf("%d_%s.gob", index, dataset)
		outPath := filepath.Join(e.arraysDir, name)
		if checkpoint && (manifest.Processed[name] || fileExists(outPath)) {
			continue
		}

		row, err := e.labels.Get(dataset, index)
		if err != nil {
			failed++
			e.logger.Error().Stack().Err(err).Str(croplog.PathKey, path).Msg("label lookup failed")
			continue
		}

		inst, err := e.BuildInstance(path, row)
		if err != nil {
			failed++
			e.logger.Error().Stack().Err(err).Str(croplog.PathKey, path).Msg("instance build failed")
			continue
		}
		if inst == nil {
			skipped++
			e.logger.Debug().Str(croplog.PathKey, path).Msg("unimputable instance skipped")
			continue
		}

		folded, err := acc.FoldSeries(inst.Matrix())
		if err != nil {
			failed++
			e.logger.Error().Stack().Err(err).Str(croplog.PathKey, path).Msg("normalizer fold failed")
			continue
		}
		acc = folded

		if err := SaveInstance(inst, outPath); err != nil {
			return errors.Wrapf(err, "writing %s", outPath)
		}
		manifest.Processed[name] = true
		written++
	}

	e.logger.Info().
		Int(croplog.WrittenKey, written).
		Int(croplog.SkippedKey, skipped).
		Int(croplog.FailedKey, failed).
		Msg("training dataset complete")

	var snapshots []normalize.Snapshot
	if previous.Stats != nil {
		snapshots = append(snapshots, previous)
	}
	if current := acc.Snapshot(); current.Stats != nil {
		snapshots = append(snapshots, current)
	}

	if merged := normalize.Merge(snapshots...); merged != nil {
		total := 0
		for _, s := range snapshots {
			total += s.Count
		}
		if err := normalize.SaveStats(merged, statsPath); err != nil {
			return err
		}
		manifest.Count = total
		manifest.Stats = merged
		e.logger.Info().Int(croplog.SamplesKey, total).Msg("normalizing statistics written")
	} else {
		e.logger.Warn().Msg("no normalizing statistics computable; nothing written")
	}

	return manifest.Save(manifestPath)
}

// CreateTestInstances processes every held-out raster, persisting one test
// instance per file named by its identifier. A failing file is logged and
// the run continues.
func (e *Engineer) CreateTestInstances() error {
	files, err := enumerate(e.testEoDir)
	if err != nil {
		return err
	}
	bar := e.newBar(len(files), "processing test eo files")

	written, failed := 0, 0
	for _, path := range files {
		e.barAdd(bar)

		identifier, inst, err := e.BuildTestInstance(path)
		if err != nil {
			failed++
			e.logger.Error().Stack().Err(err).Str(croplog.PathKey, path).Msg("test instance build failed")
			continue
		}
		outPath := filepath.Join(e.testSaveDir, identifier+".gob")
		if err := SaveTestInstance(inst, outPath); err != nil {
			return errors.Wrapf(err, "writing %s", outPath)
		}
		e.logger.Info().Str(croplog.IdentifierKey, identifier).Msg("test instance written")
		written++
	}

	e.logger.Info().
		Int(croplog.WrittenKey, written).
		Int(croplog.FailedKey, failed).
		Msg("test instances complete")
	return nil
}

func enumerate(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.tif"))
	if err != nil {
		return nil, errors.Wrap(err, "enumerating rasters")
	}
	sort.Strings(files)
	return files, nil
}

func (e *Engineer) newBar(total int, description string) *progressbar.ProgressBar {
	if !e.ShowProgress {
		return nil
	}
	return progressbar.Default(int64(total), description)
}

func (e *Engineer) barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// axisStep returns the cell size of a coordinate axis, 0 for degenerate
// single-cell axes.
func axisStep(axis []float64) float64 {
	if len(axis) < 2 {
		return 0
	}
	return math.Abs(axis[1] - axis[0])
}
