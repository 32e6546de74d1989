package domain

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MetadataVersion is the schema version written to every metadata document.
const MetadataVersion = "1.0"

// MetadataSettings are the run-wide constants that feed every document.
type MetadataSettings struct {
	DateRange  string // e.g. "1991-2020"
	Resolution string // e.g. "500m"
	DateMin    time.Time
	DateMax    time.Time
}

// DefaultMetadataSettings returns the settings for the 1991-2020 normals.
func DefaultMetadataSettings() MetadataSettings {
	return MetadataSettings{
		DateRange:  "1991-2020",
		Resolution: "500m",
		DateMin:    time.Date(1991, time.January, 1, 0, 0, 0, 0, time.UTC),
		DateMax:    time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Date is an extended-JSON date, serialized as {"$date": "...Z"}.
type Date struct {
	Value string `json:"$date"`
}

// NewDate formats t in UTC as ISO-8601 with a trailing Z, truncated to microseconds.
func NewDate(t time.Time) Date {
	return Date{Value: t.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano)}
}

// MetadataDocument is the JSON descriptor stored next to each product archive.
type MetadataDocument struct {
	Src        string          `json:"src"`
	ProductRef string          `json:"productRef"`
	Metadata   ProductMetadata `json:"metadata"`
}

// ProductMetadata is the catalog entry for one product.
type ProductMetadata struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	GeoJSON     *geojson.Geometry `json:"geojson"`
	DateMin     Date              `json:"dateMin"`
	DateMax     Date              `json:"dateMax"`
	Version     string            `json:"version"`
	UpdatedAt   Date              `json:"updatedAt"`
	Parameter   string            `json:"parameter"`
	Period      string            `json:"period"`
	Statistic   string            `json:"statistic"`
	Region      string            `json:"region"`
}

// MetadataInput describes the product a document is built for.
type MetadataInput struct {
	ProductPath string      // clipped raster path
	Prefix      string      // upload prefix, also the product reference
	Extent      orb.Polygon // region extent in WGS84
	RegionTitle string
	PeriodName  string // month or season name, e.g. "Winter"
}

// BuildMetadata fills the metadata template for one product. Parameter and
// statistic come from the product file name; period and region are the
// human-readable names the product was built for.
func BuildMetadata(in MetadataInput, s MetadataSettings) (MetadataDocument, error) {
	fields, err := ParseProductFields(in.ProductPath)
	if err != nil {
		return MetadataDocument{}, err
	}
	stem := Stem(in.ProductPath)

	title := fmt.Sprintf("Climatology Grid %s (%s), %s, Region: %s",
		fields.Parameter, s.DateRange, in.PeriodName, in.RegionTitle)
	description := fmt.Sprintf("This dataset comprises a %s resolution grid of climatologic normals (averages) for: "+
		"Parameter: %s; Statistic: %s; Period: %s; %s; Region: %s",
		s.Resolution, fields.Parameter, fields.Statistic, fields.Period, in.PeriodName, in.RegionTitle)

	return MetadataDocument{
		Src:        "/" + in.Prefix + "/" + stem + ".zip",
		ProductRef: in.Prefix,
		Metadata: ProductMetadata{
			Title:       title,
			Description: description,
			GeoJSON:     geojson.NewGeometry(in.Extent),
			DateMin:     NewDate(s.DateMin),
			DateMax:     NewDate(s.DateMax),
			Version:     MetadataVersion,
			UpdatedAt:   NewDate(clock.Now()),
			Parameter:   fields.Parameter,
			Period:      in.PeriodName,
			Statistic:   fields.Statistic,
			Region:      in.RegionTitle,
		},
	}, nil
}

// MetadataFileName returns the JSON file name paired with a product raster.
func MetadataFileName(productPath string) string {
	return Stem(productPath) + ".json"
}
