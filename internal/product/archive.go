// Package product writes the deliverables of a clipped raster: the zip
// archive bundling it with its sidecar files and the JSON metadata document.
package product

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
)

// LockSuffix marks GDAL/ArcGIS lock files, which never go into an archive.
const LockSuffix = ".lock"

// MemberError records a sidecar file that could not be added to an archive.
type MemberError struct {
	Name string
	Err  error
}

// Archive describes a written product archive.
type Archive struct {
	Path    string
	Members []string
	Failed  []MemberError
}

// Package bundles every file next to rasterPath whose name starts with the
// raster's stem into {zipDir}/{stem}.zip, replacing any previous archive.
// Lock files and sub-directories are skipped. A member that cannot be added is
// logged and recorded in Archive.Failed; the remaining members are still
// written.
func Package(rasterPath, zipDir string, logger *slog.Logger) (Archive, error) {
	dir := filepath.Dir(rasterPath)
	stem := domain.Stem(rasterPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Archive{}, fmt.Errorf("list %s: %w", dir, err)
	}

	archive := Archive{Path: filepath.Join(zipDir, stem+".zip")}
	f, err := os.Create(archive.Path)
	if err != nil {
		return Archive{}, fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, stem) || strings.HasSuffix(name, LockSuffix) {
			continue
		}
		if err := addMember(zw, filepath.Join(dir, name), name); err != nil {
			logger.Error("add archive member failed", "archive", archive.Path, "member", name, "error", err)
			archive.Failed = append(archive.Failed, MemberError{Name: name, Err: err})
			continue
		}
		archive.Members = append(archive.Members, name)
	}

	if err := zw.Close(); err != nil {
		return Archive{}, fmt.Errorf("finalize archive %s: %w", archive.Path, err)
	}
	if err := f.Close(); err != nil {
		return Archive{}, fmt.Errorf("close archive %s: %w", archive.Path, err)
	}
	return archive, nil
}

func addMember(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
