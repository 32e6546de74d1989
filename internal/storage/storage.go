// Package storage uploads finished products to object storage. Uploads are
// best-effort: a failure is logged and reported to the caller as false, it
// never aborts the run.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/climate-grid-etl/internal/observability"
)

// ErrStorageDisabled is returned by Noop for every Put.
var ErrStorageDisabled = errors.New("object storage disabled")

// ObjectStore writes a local file to a key in a bucket.
type ObjectStore interface {
	Put(ctx context.Context, key, localPath string) error
}

// ObjectKey joins an upload prefix and a file base name. Slashes around the
// prefix are trimmed; an empty prefix yields the bare name.
func ObjectKey(prefix, basename string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return basename
	}
	return prefix + "/" + basename
}

// Noop stands in when no storage client is available. It records the keys it
// was asked to store.
type Noop struct {
	mu      sync.Mutex
	skipped []string
}

func (n *Noop) Put(_ context.Context, key, _ string) error {
	n.mu.Lock()
	n.skipped = append(n.skipped, key)
	n.mu.Unlock()
	return ErrStorageDisabled
}

// Skipped returns the keys received so far.
func (n *Noop) Skipped() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.skipped...)
}

// Uploader applies the upload prefix, per-upload timeout, logging and metrics
// around an ObjectStore.
type Uploader struct {
	store   ObjectStore
	prefix  string
	timeout time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewUploader creates an Uploader. A zero timeout disables the per-upload deadline.
func NewUploader(store ObjectStore, prefix string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Uploader {
	return &Uploader{store: store, prefix: prefix, timeout: timeout, metrics: metrics, logger: logger}
}

// Key returns the object key localPath is stored under.
func (u *Uploader) Key(localPath string) string {
	return ObjectKey(u.prefix, filepath.Base(localPath))
}

// Upload stores localPath and reports whether it succeeded.
func (u *Uploader) Upload(ctx context.Context, localPath string) bool {
	key := u.Key(localPath)
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	err := u.store.Put(ctx, key, localPath)
	switch {
	case err == nil:
		u.metrics.Uploads.WithLabelValues(observability.OutcomeUploaded).Inc()
		u.logger.Info("uploaded", "path", localPath, "key", key)
		return true
	case errors.Is(err, ErrStorageDisabled):
		u.metrics.Uploads.WithLabelValues(observability.OutcomeSkipped).Inc()
		u.logger.Debug("upload skipped", "path", localPath, "key", key)
		return false
	default:
		u.metrics.Uploads.WithLabelValues(observability.OutcomeFailed).Inc()
		u.logger.Warn("upload failed", "path", localPath, "key", key, "error", err)
		return false
	}
}
