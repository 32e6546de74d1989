package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// NameDelimiter separates the coded segments of grid and product file names.
const NameDelimiter = "_"

// minNameSegments is the fewest segments a grid stem may have: the statistic
// token sits at index 4.
const minNameSegments = 5

// ErrMalformedName is returned for grid stems with too few delimited segments.
var ErrMalformedName = errors.New("malformed grid file name")

// GridName holds the fields derived from an input grid file stem, e.g.
// "vcsn_02_500m_nzmg_mean_seasonal3".
type GridName struct {
	Stem          string
	ParameterCode string
	Parameter     string
	Statistic     string
	PeriodToken   string
	Period        string
}

// ParseGridName splits a grid stem on NameDelimiter and resolves its parameter
// and period codes. Lookup misses return a *KeyNotFoundError; callers treat
// them as fatal.
func ParseGridName(stem string, lookups Lookups) (GridName, error) {
	parts := strings.Split(stem, NameDelimiter)
	if len(parts) < minNameSegments {
		return GridName{}, fmt.Errorf("%w: %q has %d segments, want at least %d",
			ErrMalformedName, stem, len(parts), minNameSegments)
	}

	parameter, err := lookups.Parameter(parts[1])
	if err != nil {
		return GridName{}, fmt.Errorf("parse %q: %w", stem, err)
	}

	token := parts[len(parts)-1]
	period, err := lookups.Period(token)
	if err != nil {
		return GridName{}, fmt.Errorf("parse %q: %w", stem, err)
	}

	return GridName{
		Stem:          stem,
		ParameterCode: parts[1],
		Parameter:     parameter,
		Statistic:     parts[4],
		PeriodToken:   token,
		Period:        period,
	}, nil
}

// ProductName composes "{parameter}_{statistic}_{dateRange}_{period}".
func (n GridName) ProductName(dateRange string) string {
	return strings.Join([]string{n.Parameter, n.Statistic, dateRange, n.Period}, NameDelimiter)
}

// ClippedName is the file stem of a product clipped to one region.
func ClippedName(productName, regionName string) string {
	return productName + NameDelimiter + regionName
}

// RegionFolder returns the name of the directory holding an input grid. Clipped
// outputs are filed under this folder, not under the region they were clipped to.
func RegionFolder(gridPath string) string {
	return filepath.Base(filepath.Dir(gridPath))
}

// Stem strips the directory and the final extension from a path.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ProductFields are the metadata fields recovered from a clipped product file
// name such as "Total-Rainfall_mean_1991-2020_Annual_Canterbury.tif".
type ProductFields struct {
	Parameter string // segment 0, dashes replaced with spaces
	Statistic string // segment 1, raw token
	Period    string // segment 2, the date range
	Region    string // last segment without extension
}

// ParseProductFields re-splits a product file name on NameDelimiter. The
// statistic is kept as the raw token rather than looked up.
func ParseProductFields(fileName string) (ProductFields, error) {
	base := filepath.Base(fileName)
	parts := strings.Split(base, NameDelimiter)
	if len(parts) < 4 {
		return ProductFields{}, fmt.Errorf("%w: product %q has %d segments, want at least 4",
			ErrMalformedName, base, len(parts))
	}
	last := parts[len(parts)-1]
	if i := strings.Index(last, "."); i >= 0 {
		last = last[:i]
	}
	return ProductFields{
		Parameter: strings.ReplaceAll(parts[0], "-", " "),
		Statistic: parts[1],
		Period:    parts[2],
		Region:    last,
	}, nil
}
