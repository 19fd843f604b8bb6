package engineer

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/cropgo/pkg/errors"
)

// ParseTrainingFilename extracts the dataset name and numeric index from a
// raw training export filename. Exports are named
// {index}-{dataset}_{suffix}, e.g. "4-geowiki-landcover-2017_2020-02-01.tif";
// the dataset name itself may contain dashes.
func ParseTrainingFilename(name string) (index int, dataset string, err error) {
	head := strings.SplitN(name, "_", 2)[0]
	parts := strings.Split(head, "-")
	if len(parts) < 2 {
		return 0, "", errors.NewValueError("engineer.ParseTrainingFilename",
			"expected {index}-{dataset}, got "+name)
	}
	index, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", errors.NewValueError("engineer.ParseTrainingFilename",
			"non-numeric index in "+name)
	}
	return index, strings.Join(parts[1:], "-"), nil
}

// ParseTestFilename extracts the held-out identifier, target crop and export
// end year from a test export filename. Test exports are named
// {region}_{crop}_{year}_{n}_{suffix}, and the identifier is the first four
// components joined back together.
func ParseTestFilename(name string) (identifier, crop string, year int, err error) {
	parts := strings.Split(name, "_")
	if len(parts) < 4 {
		return "", "", 0, errors.NewValueError("engineer.ParseTestFilename",
			"expected {region}_{crop}_{year}_{n}, got "+name)
	}
	crop = parts[1]
	year, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", "", 0, errors.NewValueError("engineer.ParseTestFilename",
			"non-numeric year in "+name)
	}
	return strings.Join(parts[:4], "_"), crop, year, nil
}
