package normalize

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// SaveStats writes normalizing statistics to a file in gob encoding.
func SaveStats(stats *Stats, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create stats file")
	}
	defer file.Close()

	return SaveStatsToWriter(stats, file)
}

// LoadStats reads normalizing statistics written by SaveStats.
func LoadStats(filename string) (*Stats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stats file")
	}
	defer file.Close()

	return LoadStatsFromReader(file)
}

// SaveStatsToWriter writes normalizing statistics to w in gob encoding.
func SaveStatsToWriter(stats *Stats, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(stats); err != nil {
		return errors.Wrap(err, "failed to encode stats")
	}
	return nil
}

// LoadStatsFromReader reads normalizing statistics from r.
func LoadStatsFromReader(r io.Reader) (*Stats, error) {
	var stats Stats
	if err := gob.NewDecoder(r).Decode(&stats); err != nil {
		return nil, errors.Wrap(err, "failed to decode stats")
	}
	return &stats, nil
}
