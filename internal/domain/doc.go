// Package domain models NIWA climatology grid products: the coded grid file
// names, the regional council boundaries products are clipped to, and the
// catalog metadata published alongside each product archive.
//
// # Grid File Names
//
// Input grids are Esri ASCII rasters (.asc) named by underscore-delimited
// segments:
//
//	vcsn_02_500m_nzmg_mean_seasonal3
//	 0    1   2    3    4      5 (last)
//
//	segment 1:    parameter code, "02" = Mean-Air-Temperature
//	segment 4:    statistic token, kept verbatim ("mean", "sd", ...)
//	last segment: period token, "monthly1".."monthly12", "seasonal1".."seasonal4", "annual"
//
// A stem with fewer than five segments is rejected with [ErrMalformedName].
// Unknown parameter or period codes produce a [KeyNotFoundError]; the run
// treats both as fatal rather than skipping the file.
//
// # Product Names
//
// Products are named "{parameter}_{statistic}_{dateRange}_{period}", e.g.
// "Mean-Air-Temperature_mean_1991-2020_Winter". Clipping appends the region
// file name: "Mean-Air-Temperature_mean_1991-2020_Winter_Canterbury". The
// archive and metadata document share that stem.
//
// # Regions
//
// Region boundaries come from the regional council feature layer (field
// REGC_code and REGC_name_ascii) in NZTM (EPSG:2193). Titles drop the
// " Region" suffix. The layer names the Chatham Islands "Area Outside Region",
// so any title beginning with "Area" is replaced with [ChathamIslandsTitle].
// Code "99" is excluded from clipping by default.
//
// # Metadata
//
// Dates use extended JSON ({"$date": "1991-01-01T00:00:00Z"}). The geojson
// field is the region extent rectangle reprojected to WGS84, so it is a
// four-cornered polygon rather than the region outline.
package domain
