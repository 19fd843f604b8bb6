package engineer

import (
	"encoding/gob"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/cropgo/normalize"
	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// Manifest is the resume state of a dataset run: which instance files have
// been written, and the normalizing statistics snapshot they were folded
// into. It is loaded once at the start of a checkpointed run and rewritten
// atomically at the end, so an interrupted run can never leave a
// half-written manifest behind.
type Manifest struct {
	// Processed holds the output names of written instance files.
	Processed map[string]bool

	// Count is the fold count Stats was computed from.
	Count int

	Stats *normalize.Stats
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Processed: make(map[string]bool)}
}

// LoadManifest reads a manifest file. A missing file yields an empty
// manifest, which is how a fresh run starts.
func LoadManifest(filename string) (*Manifest, error) {
	file, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return NewManifest(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open manifest")
	}
	defer file.Close()

	var m Manifest
	if err := gob.NewDecoder(file).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest")
	}
	if m.Processed == nil {
		m.Processed = make(map[string]bool)
	}
	return &m, nil
}

// Save writes the manifest atomically: the new state is written to a
// temporary file in the same directory and renamed over the target.
func (m *Manifest) Save(filename string) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary manifest")
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(m); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to encode manifest")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to flush manifest")
	}
	return errors.Wrap(os.Rename(tmp.Name(), filename), "failed to replace manifest")
}

// Snapshot returns the manifest's mergeable (count, stats) pair.
func (m *Manifest) Snapshot() normalize.Snapshot {
	return normalize.Snapshot{Count: m.Count, Stats: m.Stats}
}
