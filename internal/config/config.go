package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendS3   = "s3"
	BackendGCS  = "gcs"
	BackendNone = "none"
)

const dateLayout = "2006-01-02"

// DefaultRegionsLayerURL is the hosted NZ regional council boundary layer.
const DefaultRegionsLayerURL = "https://services.arcgis.com/XTtANUDT8Va4DLwI/arcgis/rest/services/nz_regional_councils/FeatureServer/0"

// Config holds all run settings, populated from environment variables.
// Command-line flags override individual fields after Load.
type Config struct {
	RegionsLayerURL string
	InputDir        string
	OutputDir       string

	// Upload destination.
	StorageBackend string
	BucketName     string
	UploadPrefix   string
	AWSRegion      string
	S3Endpoint     string
	GCSProject     string
	UploadTimeout  time.Duration

	FeatureTimeout      time.Duration
	ExcludedRegionCodes []string

	// Metadata document settings.
	DateMin        time.Time
	DateMax        time.Time
	DateRangeLabel string
	GridResolution string

	// Product notifications; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	MetricsAddr    string
	PushgatewayURL string

	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	uploadTimeout, err := parseDuration("UPLOAD_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	featureTimeout, err := parseDuration("FEATURE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	dateMin, err := parseDate("DATE_MIN", "1991-01-01")
	if err != nil {
		return nil, err
	}
	dateMax, err := parseDate("DATE_MAX", "2020-12-31")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := sharedcfg.EnvOrDefault("KAFKA_BROKERS", ""); strings.TrimSpace(raw) != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		RegionsLayerURL: sharedcfg.EnvOrDefault("REGIONS_LAYER_URL", DefaultRegionsLayerURL),
		InputDir:        sharedcfg.EnvOrDefault("INPUT_DIR", "."),
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "output"),

		StorageBackend: strings.ToLower(sharedcfg.EnvOrDefault("STORAGE_BACKEND", BackendS3)),
		BucketName:     sharedcfg.EnvOrDefault("BUCKET_NAME", "climate-data-hub"),
		UploadPrefix:   sharedcfg.EnvOrDefault("UPLOAD_PREFIX", "climatology-grids"),
		AWSRegion:      sharedcfg.EnvOrDefault("AWS_REGION", "ap-southeast-2"),
		S3Endpoint:     sharedcfg.EnvOrDefault("S3_ENDPOINT", ""),
		GCSProject:     sharedcfg.EnvOrDefault("GCS_PROJECT", ""),
		UploadTimeout:  uploadTimeout,

		FeatureTimeout:      featureTimeout,
		ExcludedRegionCodes: splitList(sharedcfg.EnvOrDefault("EXCLUDED_REGION_CODES", "99")),

		DateMin:        dateMin,
		DateMax:        dateMax,
		DateRangeLabel: sharedcfg.EnvOrDefault("DATE_RANGE_LABEL", "1991-2020"),
		GridResolution: sharedcfg.EnvOrDefault("GRID_RESOLUTION", "500m"),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "climate-grid-products"),

		MetricsAddr:    sharedcfg.EnvOrDefault("METRICS_ADDR", ""),
		PushgatewayURL: sharedcfg.EnvOrDefault("PUSHGATEWAY_URL", ""),

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         sharedcfg.EnvOrDefault("LOG_FILE", ""),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints. It is called by Load and again
// after flag overrides are applied.
func (c *Config) Validate() error {
	if c.RegionsLayerURL == "" {
		return errors.New("REGIONS_LAYER_URL is required")
	}
	if c.InputDir == "" {
		return errors.New("INPUT_DIR is required")
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	switch c.StorageBackend {
	case BackendS3, BackendGCS:
		if c.BucketName == "" {
			return fmt.Errorf("BUCKET_NAME is required when STORAGE_BACKEND is %s", c.StorageBackend)
		}
	case BackendNone:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: want s3, gcs or none", c.StorageBackend)
	}
	if c.DateMax.Before(c.DateMin) {
		return errors.New("DATE_MAX is before DATE_MIN")
	}
	if c.DateRangeLabel == "" {
		return errors.New("DATE_RANGE_LABEL is required")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// NotificationsEnabled reports whether product events are published.
func (c *Config) NotificationsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseDate(key, def string) (time.Time, error) {
	t, err := time.Parse(dateLayout, sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t.UTC(), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
