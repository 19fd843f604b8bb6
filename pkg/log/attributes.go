package log

// Common field names used by pipeline loggers. Keeping the keys in one place
// makes the run logs greppable across packages.
const (
	// DatasetKey identifies the labeled dataset a file belongs to.
	DatasetKey = "dataset"

	// IndexKey is the numeric index of a file within its dataset.
	IndexKey = "index"

	// PathKey is the raster file being processed.
	PathKey = "path"

	// IdentifierKey is a held-out evaluation identifier (region_crop_year_n).
	IdentifierKey = "identifier"

	// SamplesKey is a normalizer fold count.
	SamplesKey = "samples"

	// WrittenKey and SkippedKey are end-of-run summary counts.
	WrittenKey = "written"
	SkippedKey = "skipped"

	// FailedKey counts files aborted by per-file errors.
	FailedKey = "failed"
)
