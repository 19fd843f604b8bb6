// Command cropengine turns a folder of raw satellite exports into
// gob-encoded training and test instances plus normalizing statistics.
//
// Usage:
//
//	cropengine -data ./data -labels ./data/labels.geojson
//
// Flags fall back to the CROPGO_DATA, CROPGO_LABELS and CROPGO_LOG_LEVEL
// environment variables, which may be supplied through a .env file.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/joho/godotenv"

	"github.com/YuminosukeSato/cropgo/bands"
	"github.com/YuminosukeSato/cropgo/engineer"
	"github.com/YuminosukeSato/cropgo/labels"
	croplog "github.com/YuminosukeSato/cropgo/pkg/log"
)

func main() {
	_ = godotenv.Load()

	dataFolder := flag.String("data", os.Getenv("CROPGO_DATA"),
		"data folder containing eo_data/ and test_eo_data/")
	labelsPath := flag.String("labels", os.Getenv("CROPGO_LABELS"),
		"label file (.geojson or .csv)")
	logLevel := flag.String("log-level", envOr("CROPGO_LOG_LEVEL", "info"),
		"log level (trace, debug, info, warn, error)")
	checkpoint := flag.Bool("checkpoint", true,
		"skip files already processed by a previous run")
	skipTest := flag.Bool("skip-test", false,
		"do not build test instances")
	flag.Parse()

	logger := croplog.NewConsole(*logLevel)

	if *dataFolder == "" || *labelsPath == "" {
		logger.Fatal().Msg("both -data and -labels are required")
	}

	godal.RegisterAll()

	set, err := loadLabels(*labelsPath)
	if err != nil {
		logger.Fatal().Stack().Err(err).Str(croplog.PathKey, *labelsPath).Msg("loading labels failed")
	}
	logger.Info().Int(croplog.SamplesKey, set.Len()).Msg("labels loaded")

	eng, err := engineer.New(*dataFolder, set, bands.Default(), logger)
	if err != nil {
		logger.Fatal().Stack().Err(err).Msg("initializing engineer failed")
	}

	if err := eng.CreateDataset(*checkpoint); err != nil {
		logger.Fatal().Stack().Err(err).Msg("building training dataset failed")
	}
	if !*skipTest {
		if err := eng.CreateTestInstances(); err != nil {
			logger.Fatal().Stack().Err(err).Msg("building test instances failed")
		}
	}
}

func loadLabels(path string) (*labels.Set, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return labels.LoadCSV(path)
	}
	return labels.LoadGeoJSON(path)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
