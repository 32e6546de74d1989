package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore uploads to a Google Cloud Storage bucket.
type GCSStore struct {
	client    *storage.Client
	bucket    string
	newWriter func(ctx context.Context, key string) io.WriteCloser
}

// NewGCSStore creates a client from Application Default Credentials. project
// is used as the quota project when set.
func NewGCSStore(ctx context.Context, bucket, project string) (*GCSStore, error) {
	var opts []option.ClientOption
	if project != "" {
		opts = append(opts, option.WithQuotaProject(project))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	g := &GCSStore{client: client, bucket: bucket}
	g.newWriter = func(ctx context.Context, key string) io.WriteCloser {
		w := client.Bucket(bucket).Object(key).NewWriter(ctx)
		w.ContentType = contentType(key)
		return w
	}
	return g, nil
}

func (g *GCSStore) Put(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	w := g.newWriter(ctx, key)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", g.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gs://%s/%s: %w", g.bucket, key, err)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCSStore) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".zip":
		return "application/zip"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
