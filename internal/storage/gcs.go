package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"fashionetl/internal/config"
)

// GCSArchiver copies the written CSV into a bucket, one object per run.
type GCSArchiver struct {
	client *gcs.Client
	bucket string
	prefix string
	runID  string
}

func NewGCSArchiver(ctx context.Context, cfg config.Archive, runID string, opts ...option.ClientOption) (*GCSArchiver, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage client: %w", err)
	}
	return &GCSArchiver{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, runID: runID}, nil
}

// ObjectName is "<prefix>/products-<runID>.csv".
func (a *GCSArchiver) ObjectName() string {
	return path.Join(a.prefix, fmt.Sprintf("products-%s.csv", a.runID))
}

func (a *GCSArchiver) Archive(ctx context.Context, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	name := a.ObjectName()
	wc := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	wc.ContentType = "text/csv"
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return fmt.Errorf("error uploading %s: %w", name, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("error closing writer: %w", err)
	}

	slog.Info("csv archived", "bucket", a.bucket, "object", name)
	return nil
}

func (a *GCSArchiver) Close() error {
	return a.client.Close()
}
