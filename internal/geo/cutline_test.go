package geo

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCutline(t *testing.T) {
	poly := orb.Polygon{{{1500000, 5100000}, {1600000, 5100000}, {1600000, 5300000}, {1500000, 5100000}}}

	data, err := Cutline(poly, EPSGNZTM2000)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	crs := raw["crs"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "urn:ogc:def:crs:EPSG::2193", crs["name"])

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, poly, fc.Features[0].Geometry)
}

func TestCutline_Unsupported(t *testing.T) {
	_, err := Cutline(orb.Point{1, 2}, EPSGNZTM2000)
	require.Error(t, err)

	_, err = Cutline(nil, EPSGNZTM2000)
	require.Error(t, err)
}
