// Command validate checks a zipped output folder produced by the etl command:
// every archive has a metadata document, every document parses and carries the
// required fields, and no archive contains lock files or foreign members.
//
// Usage:
//
//	go run ./cmd/validate -dir output/regions_grids/zipped -prefix climatology-grids
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/couchcryptid/climate-grid-etl/internal/product"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "zipped output folder")
	prefix := flag.String("prefix", "", "expected upload prefix (optional)")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*dir, *prefix))
}

func run(dir, prefix string) int {
	fmt.Println("=== Climate Grid Product Validation ===")
	fmt.Println()

	archives, docs, err := scan(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validatePairs(archives, docs),
		validateArchives(dir, archives),
		validateDocuments(dir, docs, prefix),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}
	fmt.Println()
	fmt.Printf("Products: %d archives, %d metadata documents\n", len(archives), len(docs))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

// scan returns the archive and document stems found in dir, sorted.
func scan(dir string) (archives, docs []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".zip":
			archives = append(archives, domain.Stem(e.Name()))
		case ".json":
			docs = append(docs, domain.Stem(e.Name()))
		}
	}
	sort.Strings(archives)
	sort.Strings(docs)
	return archives, docs, nil
}

func validatePairs(archives, docs []string) *phase {
	p := &phase{name: "Archive/metadata pairing"}
	if len(archives) == 0 {
		p.errorf("no archives found")
	}
	has := func(set []string, s string) bool {
		i := sort.SearchStrings(set, s)
		return i < len(set) && set[i] == s
	}
	for _, stem := range archives {
		if !has(docs, stem) {
			p.errorf("%s.zip: missing %s.json", stem, stem)
		}
	}
	for _, stem := range docs {
		if !has(archives, stem) {
			p.errorf("%s.json: no matching archive", stem)
		}
	}
	return p
}

func validateArchives(dir string, archives []string) *phase {
	p := &phase{name: "Archive contents"}
	for _, stem := range archives {
		checkArchive(p, filepath.Join(dir, stem+".zip"), stem)
	}
	return p
}

func checkArchive(p *phase, path, stem string) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		p.errorf("%s: %v", filepath.Base(path), err)
		return
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		p.errorf("%s: empty archive", filepath.Base(path))
	}
	hasRaster := false
	for _, f := range zr.File {
		switch {
		case strings.HasSuffix(f.Name, product.LockSuffix):
			p.errorf("%s: contains lock file %s", filepath.Base(path), f.Name)
		case !strings.HasPrefix(f.Name, stem):
			p.errorf("%s: foreign member %s", filepath.Base(path), f.Name)
		case f.Name == stem+".tif":
			hasRaster = true
		}
	}
	if !hasRaster {
		p.errorf("%s: missing %s.tif", filepath.Base(path), stem)
	}
}

func validateDocuments(dir string, docs []string, prefix string) *phase {
	p := &phase{name: "Metadata documents"}
	for _, stem := range docs {
		checkDocument(p, filepath.Join(dir, stem+".json"), stem, prefix)
	}
	return p
}

func checkDocument(p *phase, path, stem, prefix string) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("%s: %v", name, err)
		return
	}
	var doc domain.MetadataDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		p.errorf("%s: %v", name, err)
		return
	}

	m := doc.Metadata
	required := map[string]string{
		"src":                  doc.Src,
		"productRef":           doc.ProductRef,
		"metadata.title":       m.Title,
		"metadata.description": m.Description,
		"metadata.dateMin":     m.DateMin.Value,
		"metadata.dateMax":     m.DateMax.Value,
		"metadata.version":     m.Version,
		"metadata.updatedAt":   m.UpdatedAt.Value,
		"metadata.parameter":   m.Parameter,
		"metadata.period":      m.Period,
		"metadata.statistic":   m.Statistic,
		"metadata.region":      m.Region,
	}
	keys := make([]string, 0, len(required))
	for k := range required {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if required[k] == "" {
			p.errorf("%s: missing %s", name, k)
		}
	}
	if m.GeoJSON == nil || m.GeoJSON.Coordinates == nil {
		p.errorf("%s: missing metadata.geojson", name)
	}

	if !strings.HasSuffix(doc.Src, "/"+stem+".zip") {
		p.errorf("%s: src %q does not reference %s.zip", name, doc.Src, stem)
	}
	if prefix != "" && doc.ProductRef != prefix {
		p.errorf("%s: productRef %q, want %q", name, doc.ProductRef, prefix)
	}
	for _, part := range []string{m.Parameter, m.Period, m.Region} {
		if part != "" && !strings.Contains(m.Title, part) {
			p.errorf("%s: title %q does not mention %q", name, m.Title, part)
		}
	}
}
