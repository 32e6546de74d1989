// Package geo reprojects region extents for metadata documents.
package geo

import (
	"fmt"

	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"
)

// Well-known coordinate reference systems as proj4 definitions.
const (
	// NZTM2000 is New Zealand Transverse Mercator (EPSG:2193), the CRS region
	// features are requested in and clipped rasters are written in.
	NZTM2000 = "+proj=tmerc +lat_0=0 +lon_0=173 +k=0.9996 +x_0=1600000 +y_0=10000000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs"
	// WGS84 is geographic longitude/latitude (EPSG:4326), the CRS of GeoJSON.
	WGS84 = "+proj=longlat +datum=WGS84 +no_defs"
)

// Reprojector transforms coordinates between two reference systems.
type Reprojector struct {
	transform proj.Transformer
}

// NewReprojector builds a transform from the src to the dst proj4 definition.
// The source false origin is transformed once so an unsupported projection
// fails here rather than on first use.
func NewReprojector(src, dst string) (*Reprojector, error) {
	from, err := proj.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse source crs: %w", err)
	}
	to, err := proj.Parse(dst)
	if err != nil {
		return nil, fmt.Errorf("parse destination crs: %w", err)
	}
	t, err := from.NewTransform(to)
	if err != nil {
		return nil, fmt.Errorf("build transform: %w", err)
	}
	if t == nil {
		// Equal systems yield no transformer.
		t = func(x, y float64) (float64, float64, error) { return x, y, nil }
	}
	if _, _, err := t(from.X0, from.Y0); err != nil {
		return nil, fmt.Errorf("build transform: %w", err)
	}
	return &Reprojector{transform: t}, nil
}

// Point transforms a single coordinate.
func (r *Reprojector) Point(p orb.Point) (orb.Point, error) {
	x, y, err := r.transform(p[0], p[1])
	if err != nil {
		return orb.Point{}, fmt.Errorf("transform %v: %w", p, err)
	}
	return orb.Point{x, y}, nil
}

// ExtentPolygon returns the rectangle of b as a closed, counter-clockwise
// polygon with every corner transformed. The result is not necessarily
// axis-aligned in the destination CRS.
func (r *Reprojector) ExtentPolygon(b orb.Bound) (orb.Polygon, error) {
	src := b.ToRing()
	ring := make(orb.Ring, 0, len(src))
	for _, p := range src {
		q, err := r.Point(p)
		if err != nil {
			return nil, err
		}
		ring = append(ring, q)
	}
	return orb.Polygon{ring}, nil
}
