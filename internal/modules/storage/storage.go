package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Download when the object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the persistence boundary for rendered archives and the
// checkpoint record. The production implementation is backed by GCS;
// tests substitute in-memory fakes.
type ObjectStore interface {
	Upload(ctx context.Context, path, content, contentType string) error
	Download(ctx context.Context, path string) (string, error)
	Exists(ctx context.Context, path string) (bool, error)
	EnsureBucket(ctx context.Context, location string) error
	List(ctx context.Context, prefix string, limit int) ([]string, error)
	Close() error
}
