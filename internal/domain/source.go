package domain

import "context"

// RegionSource supplies the region boundaries products are clipped to.
type RegionSource interface {
	FetchRegions(ctx context.Context) ([]Region, error)
}
