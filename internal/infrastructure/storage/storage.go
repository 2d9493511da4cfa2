// Package storage keeps attachment files in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotConfigured = errors.New("object storage is not configured")

// ObjectStore is the subset of object storage used by attachments.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
