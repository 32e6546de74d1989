package storage

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climate-grid-etl/internal/config"
)

// Select builds the configured store once per run. If the client cannot be
// constructed the run continues with a Noop store.
func Select(ctx context.Context, cfg *config.Config, logger *slog.Logger) ObjectStore {
	var (
		store ObjectStore
		err   error
	)
	switch cfg.StorageBackend {
	case config.BackendS3:
		store, err = NewS3Store(ctx, cfg.BucketName, cfg.AWSRegion, cfg.S3Endpoint)
	case config.BackendGCS:
		store, err = NewGCSStore(ctx, cfg.BucketName, cfg.GCSProject)
	default:
		logger.Info("object storage disabled")
		return &Noop{}
	}
	if err != nil {
		logger.Warn("object storage unavailable, uploads will be skipped", "backend", cfg.StorageBackend, "error", err)
		return &Noop{}
	}
	logger.Info("object storage enabled", "backend", cfg.StorageBackend, "bucket", cfg.BucketName)
	return store
}
