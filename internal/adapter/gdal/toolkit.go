// Package gdal implements the raster toolkit on top of GDAL.
package gdal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/airbusgeo/godal"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/couchcryptid/climate-grid-etl/internal/geo"
)

// Toolkit converts and clips rasters with GDAL.
// It implements pipeline.RasterToolkit.
type Toolkit struct {
	logger *slog.Logger
}

// New registers the GDAL drivers and returns a Toolkit.
func New(logger *slog.Logger) *Toolkit {
	godal.RegisterAll()
	return &Toolkit{logger: logger}
}

// Convert writes src as a Cloud Optimized GeoTIFF at dst, assigning the
// NZMG reference system the climatology grids are produced in.
func (t *Toolkit) Convert(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ds, err := godal.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer ds.Close()

	out, err := ds.Translate(dst, []string{
		"-of", "COG",
		"-a_srs", epsg(geo.EPSGNZMG),
		"-co", "COMPRESS=DEFLATE",
	})
	if err != nil {
		return fmt.Errorf("translate %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	t.logger.Debug("converted grid", "src", src, "dst", dst)
	return nil
}

// Clip warps src into NZTM, cropped to the region geometry. A world file and
// band statistics (.aux.xml) are written next to dst.
func (t *Toolkit) Clip(ctx context.Context, src, dst string, region domain.Region) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cutline, err := writeCutline(region)
	if err != nil {
		return err
	}
	defer os.Remove(cutline)

	ds, err := godal.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer ds.Close()

	out, err := ds.Warp(dst, []string{
		"-of", "GTiff",
		"-t_srs", epsg(geo.EPSGNZTM2000),
		"-cutline", cutline,
		"-crop_to_cutline",
		"-dstnodata", "-9999",
		"-co", "TFW=YES",
		"-co", "COMPRESS=DEFLATE",
		"-overwrite",
	})
	if err != nil {
		return fmt.Errorf("warp %s to region %s: %w", src, region.Code, err)
	}
	for i, band := range out.Bands() {
		if _, err := band.ComputeStatistics(); err != nil {
			out.Close()
			return fmt.Errorf("statistics for %s band %d: %w", dst, i+1, err)
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	t.logger.Debug("clipped raster", "src", src, "dst", dst, "region", region.Code)
	return nil
}

func writeCutline(region domain.Region) (string, error) {
	data, err := geo.Cutline(region.Geometry, geo.EPSGNZTM2000)
	if err != nil {
		return "", fmt.Errorf("region %s: %w", region.Code, err)
	}
	f, err := os.CreateTemp("", "cutline-"+region.Code+"-*.geojson")
	if err != nil {
		return "", fmt.Errorf("create cutline: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write cutline: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write cutline: %w", err)
	}
	return f.Name(), nil
}

func epsg(code int) string {
	return "EPSG:" + strconv.Itoa(code)
}
