package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/couchcryptid/climate-grid-etl/internal/observability"
)

// Regional council layer attribute names.
const (
	CodeField = "REGC_code"
	NameField = "REGC_name_ascii"
)

// nztmWKID is the spatial reference features are requested in (EPSG:2193).
const nztmWKID = "2193"

// Client implements domain.RegionSource against an ArcGIS feature layer
// query endpoint.
type Client struct {
	layerURL   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feature layer client. layerURL is the layer resource,
// e.g. ".../FeatureServer/0".
func NewClient(layerURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		layerURL: strings.TrimSuffix(layerURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchRegions queries every feature of the layer as GeoJSON in NZTM.
// Features without a code or geometry are skipped.
func (c *Client) FetchRegions(ctx context.Context) ([]domain.Region, error) {
	params := url.Values{
		"where":          {"1=1"},
		"outFields":      {CodeField + "," + NameField},
		"outSR":          {nztmWKID},
		"returnGeometry": {"true"},
		"f":              {"geojson"},
	}

	start := time.Now()
	fc, err := c.query(ctx, c.layerURL+"/query?"+params.Encode())
	c.metrics.RegionFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.RegionFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.RegionFetches.WithLabelValues("success").Inc()

	regions := make([]domain.Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		code := propertyString(f.Properties, CodeField)
		if code == "" || f.Geometry == nil {
			c.logger.Warn("skipping region feature", "index", i, "code", code, "has_geometry", f.Geometry != nil)
			continue
		}
		regions = append(regions, domain.Region{
			Code:        code,
			DisplayName: propertyString(f.Properties, NameField),
			Geometry:    f.Geometry,
		})
	}
	c.logger.Info("fetched region features", "count", len(regions), "layer", c.layerURL)
	return regions, nil
}

func (c *Client) query(ctx context.Context, fullURL string) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feature query request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feature service error: status %d: %s", resp.StatusCode, body)
	}

	// ArcGIS reports query failures as HTTP 200 with an error envelope.
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return nil, fmt.Errorf("feature service error: code %d: %s", envelope.Error.Code, envelope.Error.Message)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("feature service returned no features")
	}
	return fc, nil
}

// propertyString reads an attribute as a string. Numeric codes are zero-padded
// to two digits to match the region lookup keys.
func propertyString(props geojson.Properties, key string) string {
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%02d", int(v))
	default:
		return ""
	}
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
