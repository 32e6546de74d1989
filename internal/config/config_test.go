package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultRegionsLayerURL, cfg.RegionsLayerURL)
	assert.Equal(t, ".", cfg.InputDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, BackendS3, cfg.StorageBackend)
	assert.Equal(t, "climate-data-hub", cfg.BucketName)
	assert.Equal(t, "climatology-grids", cfg.UploadPrefix)
	assert.Equal(t, 60*time.Second, cfg.UploadTimeout)
	assert.Equal(t, 30*time.Second, cfg.FeatureTimeout)
	assert.Equal(t, []string{"99"}, cfg.ExcludedRegionCodes)
	assert.Equal(t, time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), cfg.DateMin)
	assert.Equal(t, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), cfg.DateMax)
	assert.Equal(t, "1991-2020", cfg.DateRangeLabel)
	assert.Equal(t, "500m", cfg.GridResolution)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.NotificationsEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("REGIONS_LAYER_URL", "http://localhost:8081/FeatureServer/0")
	t.Setenv("INPUT_DIR", "/data/grids")
	t.Setenv("OUTPUT_DIR", "/data/out")
	t.Setenv("STORAGE_BACKEND", "GCS")
	t.Setenv("BUCKET_NAME", "grids")
	t.Setenv("UPLOAD_PREFIX", "test-prefix")
	t.Setenv("UPLOAD_TIMEOUT", "2m")
	t.Setenv("EXCLUDED_REGION_CODES", "99, 12 ,")
	t.Setenv("DATE_MIN", "1981-01-01")
	t.Setenv("DATE_MAX", "2010-12-31")
	t.Setenv("DATE_RANGE_LABEL", "1981-2010")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "products")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_FILE", "/tmp/etl.log")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081/FeatureServer/0", cfg.RegionsLayerURL)
	assert.Equal(t, "/data/grids", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, BackendGCS, cfg.StorageBackend)
	assert.Equal(t, "grids", cfg.BucketName)
	assert.Equal(t, "test-prefix", cfg.UploadPrefix)
	assert.Equal(t, 2*time.Minute, cfg.UploadTimeout)
	assert.Equal(t, []string{"99", "12"}, cfg.ExcludedRegionCodes)
	assert.Equal(t, 1981, cfg.DateMin.Year())
	assert.Equal(t, "1981-2010", cfg.DateRangeLabel)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "products", cfg.KafkaTopic)
	assert.True(t, cfg.NotificationsEnabled())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "/tmp/etl.log", cfg.LogFile)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"shutdown timeout", "SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"upload timeout", "UPLOAD_TIMEOUT", "-1s", "UPLOAD_TIMEOUT"},
		{"feature timeout", "FEATURE_TIMEOUT", "soon", "FEATURE_TIMEOUT"},
		{"date min", "DATE_MIN", "01/01/1991", "DATE_MIN"},
		{"date order", "DATE_MAX", "1980-01-01", "DATE_MAX"},
		{"backend", "STORAGE_BACKEND", "ftp", "STORAGE_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_BucketRequiredForUploads(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.BucketName = ""
	require.ErrorContains(t, cfg.Validate(), "BUCKET_NAME")

	cfg.StorageBackend = BackendNone
	assert.NoError(t, cfg.Validate())
}

func TestValidate_TopicRequiredWithBrokers(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.KafkaBrokers = []string{"localhost:9092"}
	cfg.KafkaTopic = ""
	assert.ErrorContains(t, cfg.Validate(), "KAFKA_TOPIC")
}
