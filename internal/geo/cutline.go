package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// EPSG codes used when talking to the raster toolkit.
const (
	EPSGNZMG     = 27200
	EPSGNZTM2000 = 2193
)

// Cutline encodes g as a single-feature GeoJSON collection tagged with its
// EPSG code, suitable as a warp cutline.
func Cutline(g orb.Geometry, epsg int) ([]byte, error) {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
	case nil:
		return nil, errors.New("cutline: nil geometry")
	default:
		return nil, fmt.Errorf("cutline: unsupported geometry %s", g.GeoJSONType())
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(g))
	fc.ExtraMembers = geojson.Properties{
		"crs": map[string]any{
			"type":       "name",
			"properties": map[string]any{"name": fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", epsg)},
		},
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("cutline: %w", err)
	}
	return data, nil
}
