package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nztmToWGS84(t *testing.T) *Reprojector {
	t.Helper()
	r, err := NewReprojector(NZTM2000, WGS84)
	require.NoError(t, err)
	return r
}

func TestReprojector_Point(t *testing.T) {
	r := nztmToWGS84(t)

	tests := []struct {
		name     string
		in       orb.Point
		lon, lat float64
		delta    float64
	}{
		{"projection origin", orb.Point{1600000, 10000000}, 173, 0, 1e-6},
		{"wellington", orb.Point{1748735, 5427916}, 174.776, -41.286, 0.01},
		{"christchurch", orb.Point{1570625, 5180313}, 172.636, -43.531, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Point(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.lon, p.Lon(), tt.delta)
			assert.InDelta(t, tt.lat, p.Lat(), tt.delta)
		})
	}
}

func TestReprojector_ExtentPolygon(t *testing.T) {
	r := nztmToWGS84(t)
	b := orb.Bound{Min: orb.Point{1500000, 5100000}, Max: orb.Point{1600000, 5200000}}

	poly, err := r.ExtentPolygon(b)
	require.NoError(t, err)
	require.Len(t, poly, 1)

	ring := poly[0]
	require.Len(t, ring, 5)
	assert.True(t, ring.Closed())
	assert.Equal(t, orb.CCW, ring.Orientation())
	for _, p := range ring {
		assert.True(t, p.Lon() > 171 && p.Lon() < 174, "lon %f", p.Lon())
		assert.True(t, p.Lat() > -45 && p.Lat() < -43, "lat %f", p.Lat())
	}
	// The eastern edge of the rectangle sits on the central meridian.
	assert.InDelta(t, 173, ring[1].Lon(), 1e-6)
}

func TestNewReprojector_InvalidCRS(t *testing.T) {
	_, err := NewReprojector("+proj=nonsense", WGS84)
	require.Error(t, err)
}

func TestNewReprojector_SameCRS(t *testing.T) {
	r, err := NewReprojector(WGS84, WGS84)
	require.NoError(t, err)

	p, err := r.Point(orb.Point{172.6, -43.5})
	require.NoError(t, err)
	assert.InDelta(t, 172.6, p.Lon(), 1e-9)
	assert.InDelta(t, -43.5, p.Lat(), 1e-9)
}
