package domain

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// ChathamIslandsTitle replaces region titles that start with "Area". The
// regional council layer names the Chatham Islands territory "Area Outside
// Region", which is not a usable product title.
const ChathamIslandsTitle = "Chatham Islands"

// DefaultExcludedRegionCodes lists region codes skipped during clipping. The
// Chatham Islands feature straddles the antimeridian and its extent breaks the clip.
var DefaultExcludedRegionCodes = []string{"99"}

// Region is a regional council boundary from the feature service, in the
// service's projected CRS.
type Region struct {
	Code        string
	DisplayName string
	Geometry    orb.Geometry
}

// Extent returns the bounding box of the region geometry.
func (r Region) Extent() orb.Bound {
	if r.Geometry == nil {
		return orb.Bound{}
	}
	return r.Geometry.Bound()
}

// NormalizeTitle derives a product title from a feature display name by
// dropping the " Region" suffix. Any title starting with "Area" becomes
// ChathamIslandsTitle regardless of the rest of the name.
func NormalizeTitle(displayName string) string {
	title, _, _ := strings.Cut(displayName, " Region")
	if strings.HasPrefix(title, "Area") {
		return ChathamIslandsTitle
	}
	return title
}

// ClipTarget is a region resolved for clipping: its file-name form and title.
type ClipTarget struct {
	Region
	Name  string // e.g. "Bay-Of-Plenty"
	Title string // e.g. "Bay of Plenty"
}

// ClipTargets filters out excluded region codes and resolves the file name and
// title of each remaining region, preserving feature order. An unknown region
// code returns a *KeyNotFoundError.
func ClipTargets(regions []Region, lookups Lookups, excluded []string) ([]ClipTarget, error) {
	skip := make(map[string]struct{}, len(excluded))
	for _, code := range excluded {
		skip[code] = struct{}{}
	}

	targets := make([]ClipTarget, 0, len(regions))
	for _, r := range regions {
		if _, ok := skip[r.Code]; ok {
			continue
		}
		name, err := lookups.Region(r.Code)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", r.DisplayName, err)
		}
		targets = append(targets, ClipTarget{
			Region: r,
			Name:   name,
			Title:  NormalizeTitle(r.DisplayName),
		})
	}
	return targets, nil
}
