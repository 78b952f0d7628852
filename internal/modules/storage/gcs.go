package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/samber/oops"
	"google.golang.org/api/iterator"

	"github.com/TheStevenMiller/Discord-Bot/internal/shared/config"
)

// GCS implements ObjectStore on a Google Cloud Storage bucket.
type GCS struct {
	client     *gcs.Client
	bucketName string
	projectID  string
	logger     *slog.Logger
}

func NewGCS(ctx context.Context, cfg *config.Config) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, oops.With("bucket", cfg.GCSBucketName, "context", "creating storage client").Wrap(err)
	}

	slog.Info("Initialized Cloud Storage client", "bucket", cfg.GCSBucketName)

	return &GCS{
		client:     client,
		bucketName: cfg.GCSBucketName,
		projectID:  cfg.GCPProjectID,
		logger:     slog.Default(),
	}, nil
}

func (s *GCS) Upload(ctx context.Context, path, content, contentType string) error {
	w := s.client.Bucket(s.bucketName).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if strings.HasPrefix(contentType, "text/html") {
		// Archives are served directly out of the bucket
		w.CacheControl = "public, max-age=3600"
	}

	if _, err := io.WriteString(w, content); err != nil {
		w.Close()
		return oops.With("path", path).Wrap(err)
	}
	if err := w.Close(); err != nil {
		return oops.With("path", path).Wrap(err)
	}

	s.logger.Info("Uploaded object", "path", "gs://"+s.bucketName+"/"+path, "bytes", len(content))
	return nil
}

func (s *GCS) Download(ctx context.Context, path string) (string, error) {
	r, err := s.client.Bucket(s.bucketName).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return "", ErrObjectNotFound
		}
		return "", oops.With("path", path).Wrap(err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", oops.With("path", path).Wrap(err)
	}
	return string(data), nil
}

func (s *GCS) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.Bucket(s.bucketName).Object(path).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, nil
		}
		return false, oops.With("path", path).Wrap(err)
	}
	return true, nil
}

// EnsureBucket verifies the bucket exists, creating it in the given
// location when it does not.
func (s *GCS) EnsureBucket(ctx context.Context, location string) error {
	bucket := s.client.Bucket(s.bucketName)

	_, err := bucket.Attrs(ctx)
	if err == nil {
		s.logger.Info("Bucket already exists", "bucket", s.bucketName)
		return nil
	}
	if !errors.Is(err, gcs.ErrBucketNotExist) {
		return oops.With("bucket", s.bucketName).Wrap(err)
	}

	if err := bucket.Create(ctx, s.projectID, &gcs.BucketAttrs{Location: location}); err != nil {
		return oops.With("bucket", s.bucketName, "location", location).Wrap(err)
	}

	s.logger.Info("Created bucket", "bucket", s.bucketName, "location", location)
	return nil
}

func (s *GCS) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	it := s.client.Bucket(s.bucketName).Objects(ctx, &gcs.Query{Prefix: prefix})

	var paths []string
	for len(paths) < limit {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, oops.With("prefix", prefix).Wrap(err)
		}
		paths = append(paths, attrs.Name)
	}

	s.logger.Debug("Listed objects", "prefix", prefix, "count", len(paths))
	return paths, nil
}

func (s *GCS) Close() error {
	return s.client.Close()
}
