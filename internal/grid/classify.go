// Package grid discovers Esri ASCII grid files and prepares the output tree.
package grid

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the file extension of Esri ASCII grids.
const Extension = ".asc"

// Groups maps grid file stems to the absolute paths sharing that stem. Stems
// keep first-seen order and paths keep traversal order.
type Groups struct {
	order []string
	paths map[string][]string
}

// Stems returns the grouping keys in first-seen order.
func (g *Groups) Stems() []string { return g.order }

// Paths returns the files grouped under stem.
func (g *Groups) Paths(stem string) []string { return g.paths[stem] }

// Len is the number of distinct stems.
func (g *Groups) Len() int { return len(g.order) }

// FileCount is the total number of grouped files.
func (g *Groups) FileCount() int {
	n := 0
	for _, p := range g.paths {
		n += len(p)
	}
	return n
}

func (g *Groups) add(stem, path string) {
	if g.paths == nil {
		g.paths = make(map[string][]string)
	}
	if _, ok := g.paths[stem]; !ok {
		g.order = append(g.order, stem)
	}
	g.paths[stem] = append(g.paths[stem], path)
}

// Classify walks root recursively in lexical order and groups every file with
// extension ext by its stem. Files with the same stem in different
// sub-folders land in the same group.
func Classify(root, ext string) (*Groups, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve input folder: %w", err)
	}

	groups := &Groups{paths: make(map[string][]string)}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		groups.add(strings.TrimSuffix(d.Name(), ext), path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", abs, err)
	}
	return groups, nil
}

// Layout names the three output roots written by a run.
type Layout struct {
	Converted string // whole-country GeoTIFFs
	Regions   string // clipped rasters, one sub-folder per input region folder
	Zipped    string // product archives and metadata documents
}

// NewLayout returns the standard layout under root.
func NewLayout(root string) Layout {
	regions := filepath.Join(root, "regions_grids")
	return Layout{
		Converted: filepath.Join(root, "converted"),
		Regions:   regions,
		Zipped:    filepath.Join(regions, "zipped"),
	}
}

// EnsureOutputDirs creates the layout's directories. Existing directories are left as is.
func EnsureOutputDirs(l Layout, logger *slog.Logger) error {
	for _, dir := range []string{l.Converted, l.Regions, l.Zipped} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output folder: %w", err)
		}
		logger.Info("created output folder", "path", dir)
	}
	return nil
}
