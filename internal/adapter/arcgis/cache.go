package arcgis

import (
	"context"
	"sync"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
)

// CachedSource wraps a RegionSource and keeps the first successful result for
// the lifetime of the run. Failed fetches are not cached.
type CachedSource struct {
	inner domain.RegionSource

	mu      sync.Mutex
	regions []domain.Region
	loaded  bool
}

// NewCachedSource creates a caching decorator around a region source.
func NewCachedSource(inner domain.RegionSource) *CachedSource {
	return &CachedSource{inner: inner}
}

// FetchRegions returns the cached regions, fetching them on first use. The
// returned slice is a copy.
func (c *CachedSource) FetchRegions(ctx context.Context) ([]domain.Region, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		regions, err := c.inner.FetchRegions(ctx)
		if err != nil {
			return nil, err
		}
		c.regions = regions
		c.loaded = true
	}
	out := make([]domain.Region, len(c.regions))
	copy(out, c.regions)
	return out, nil
}

// Loaded reports whether regions have been fetched.
func (c *CachedSource) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}
