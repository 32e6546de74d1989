// Command genmock writes a mock input tree of small Esri ASCII grids named
// like the VCSN climatology exports, one sub-folder per region code. The tree
// can be fed straight to the etl command for local runs.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/grids \
//	  -regions 13,14 \
//	  -params 00,02 \
//	  -periods annual,seasonal3
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/couchcryptid/climate-grid-etl/internal/grid"
)

const noData = -9999

// gridSpec is the shape and placement of every generated grid, in NZMG metres.
type gridSpec struct {
	NCols, NRows int
	XLL, YLL     float64
	CellSize     float64
}

var defaultSpec = gridSpec{NCols: 40, NRows: 30, XLL: 2400000, YLL: 5700000, CellSize: 500}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output folder for the mock grid tree")
	regions := flag.String("regions", "13,14", "comma-separated region codes (one sub-folder each)")
	params := flag.String("params", "00,02", "comma-separated parameter codes")
	periods := flag.String("periods", "annual,seasonal3", "comma-separated period tokens")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	paths, err := generate(*out, split(*regions), split(*params), split(*periods), domain.DefaultLookups(), defaultSpec)
	if err != nil {
		return err
	}
	log.Printf("wrote %d grids under %s", len(paths), *out)
	return nil
}

// generate writes one grid per region, parameter and period combination and
// returns the written paths. Codes are checked against the lookups so the
// tree only contains names the etl command accepts.
func generate(root string, regions, params, periods []string, lookups domain.Lookups, spec gridSpec) ([]string, error) {
	for _, code := range params {
		if _, err := lookups.Parameter(code); err != nil {
			return nil, err
		}
	}
	for _, token := range periods {
		if _, err := lookups.Period(token); err != nil {
			return nil, err
		}
	}

	var paths []string
	for i, region := range regions {
		dir := filepath.Join(root, region)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
		for j, code := range params {
			for k, token := range periods {
				stem := strings.Join([]string{"vcsn", code, "500m", "nzmg", "mean", token}, domain.NameDelimiter)
				path := filepath.Join(dir, stem+grid.Extension)
				seed := float64(i*100 + j*10 + k)
				if err := writeGrid(path, spec, seed); err != nil {
					return nil, err
				}
				paths = append(paths, path)
			}
		}
	}
	return paths, nil
}

// writeGrid writes a smooth synthetic surface with a no-data corner.
func writeGrid(path string, spec gridSpec, seed float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "ncols         %d\n", spec.NCols)
	fmt.Fprintf(w, "nrows         %d\n", spec.NRows)
	fmt.Fprintf(w, "xllcorner     %.0f\n", spec.XLL)
	fmt.Fprintf(w, "yllcorner     %.0f\n", spec.YLL)
	fmt.Fprintf(w, "cellsize      %.0f\n", spec.CellSize)
	fmt.Fprintf(w, "NODATA_value  %d\n", noData)

	for r := range spec.NRows {
		for c := range spec.NCols {
			if c > 0 {
				w.WriteByte(' ')
			}
			if r == 0 && c == 0 {
				fmt.Fprintf(w, "%d", noData)
				continue
			}
			v := seed + 10*math.Sin(float64(r)/5) + 5*math.Cos(float64(c)/7)
			fmt.Fprintf(w, "%.2f", v)
		}
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
