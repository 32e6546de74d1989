package arcgis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
)

// --- mock for cache tests ---

type countingSource struct {
	calls   int
	regions []domain.Region
	errs    []error
}

func (m *countingSource) FetchRegions(_ context.Context) ([]domain.Region, error) {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.regions, nil
}

func TestCachedSource_FetchesOnce(t *testing.T) {
	inner := &countingSource{regions: []domain.Region{{Code: "13", DisplayName: "Canterbury Region"}}}
	cached := NewCachedSource(inner)
	assert.False(t, cached.Loaded())

	for range 5 {
		regions, err := cached.FetchRegions(context.Background())
		require.NoError(t, err)
		require.Len(t, regions, 1)
		assert.Equal(t, "13", regions[0].Code)
	}

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.True(t, cached.Loaded())
}

func TestCachedSource_ErrorNotCached(t *testing.T) {
	inner := &countingSource{
		regions: []domain.Region{{Code: "14"}},
		errs:    []error{errors.New("service unavailable")},
	}
	cached := NewCachedSource(inner)

	_, err := cached.FetchRegions(context.Background())
	require.Error(t, err)
	assert.False(t, cached.Loaded())

	regions, err := cached.FetchRegions(context.Background())
	require.NoError(t, err)
	assert.Len(t, regions, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_ReturnsCopy(t *testing.T) {
	inner := &countingSource{regions: []domain.Region{{Code: "13"}, {Code: "14"}}}
	cached := NewCachedSource(inner)

	first, err := cached.FetchRegions(context.Background())
	require.NoError(t, err)
	first[0].Code = "mutated"

	second, err := cached.FetchRegions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "13", second[0].Code)
}
