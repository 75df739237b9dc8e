// Package storage holds raw uploaded recordings. Two backends are provided:
// local disk for development and any S3-compatible object store for
// production.
package storage

import (
	"context"
	"io"
)

type Storage interface {
	Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error
	Download(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, path string) error
}
