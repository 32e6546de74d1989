package domain

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		display  string
		expected string
	}{
		{"region suffix removed", "Canterbury Region", "Canterbury"},
		{"multi-word region", "Bay of Plenty Region", "Bay of Plenty"},
		{"no suffix", "Nelson", "Nelson"},
		{"area outside region", "Area Outside Region", ChathamIslandsTitle},
		{"any area prefix", "Areal Unit", ChathamIslandsTitle},
		{"suffix mid-name", "West Coast Regional", "West Coast"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTitle(tt.display))
		})
	}
}

func TestRegion_Extent(t *testing.T) {
	poly := orb.Polygon{{{1, 2}, {5, 2}, {5, 8}, {1, 8}, {1, 2}}}
	r := Region{Code: "13", Geometry: poly}
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{5, 8}}, r.Extent())

	assert.Equal(t, orb.Bound{}, Region{}.Extent())
}

func TestClipTargets(t *testing.T) {
	lookups := DefaultLookups()
	regions := []Region{
		{Code: "13", DisplayName: "Canterbury Region"},
		{Code: "99", DisplayName: "Area Outside Region"},
		{Code: "04", DisplayName: "Bay of Plenty Region"},
	}

	t.Run("excludes chatham islands", func(t *testing.T) {
		targets, err := ClipTargets(regions, lookups, DefaultExcludedRegionCodes)
		require.NoError(t, err)
		require.Len(t, targets, 2)

		assert.Equal(t, "Canterbury", targets[0].Name)
		assert.Equal(t, "Canterbury", targets[0].Title)
		assert.Equal(t, "Bay-Of-Plenty", targets[1].Name)
		assert.Equal(t, "Bay of Plenty", targets[1].Title)
	})

	t.Run("nothing excluded", func(t *testing.T) {
		targets, err := ClipTargets(regions, lookups, nil)
		require.NoError(t, err)
		require.Len(t, targets, 3)
		assert.Equal(t, "Chatham-Islands", targets[1].Name)
		assert.Equal(t, ChathamIslandsTitle, targets[1].Title)
	})

	t.Run("unknown region code", func(t *testing.T) {
		_, err := ClipTargets([]Region{{Code: "42", DisplayName: "Atlantis Region"}}, lookups, nil)
		var keyErr *KeyNotFoundError
		require.True(t, errors.As(err, &keyErr))
		assert.Equal(t, TableRegion, keyErr.Table)
		assert.Contains(t, err.Error(), "Atlantis")
	})
}
