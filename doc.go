// Package cropgo turns raw multi-band satellite raster exports into
// normalized, per-location time-series feature arrays for crop-classification
// models, and produces rasterized ground-truth labels for held-out evaluation
// regions.
//
// The exported rasters concatenate every timestep's dynamic bands followed by
// a small set of static bands. CropGo reconstructs the temporal structure,
// derives NDVI, drops low-value bands, imputes missing observations and
// maintains streaming per-band normalization statistics that can be
// checkpointed and merged across incremental runs.
//
// # Packages
//
//   - bands: static band catalog (dynamic/static ordering, removed bands,
//     final feature order)
//   - raster: GeoTIFF reading and timestep splitting
//   - transform: NDVI derivation, band removal and NaN imputation
//   - normalize: streaming Welford accumulator with exact merging
//   - labels: ground-truth rows, evaluation regions and ternary rasterization
//   - engineer: instance builders and the checkpoint-aware orchestrator
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//
//	    "github.com/YuminosukeSato/cropgo/bands"
//	    "github.com/YuminosukeSato/cropgo/engineer"
//	    "github.com/YuminosukeSato/cropgo/labels"
//	    croplog "github.com/YuminosukeSato/cropgo/pkg/log"
//	)
//
//	func main() {
//	    set, err := labels.LoadGeoJSON("data/labels.geojson")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    eng, err := engineer.New("data", set, bands.Default(), croplog.New("info"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := eng.CreateDataset(true); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Downstream training code reads the persisted instances and normalizing
// statistics, flattens each [timesteps, bands] array and standardizes it with
// (x-mean)/std.
package cropgo
