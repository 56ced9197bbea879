package ports

import (
	"context"
	"io"
	"time"
)

// BlobStore is object storage keyed by path.
type BlobStore interface {
	Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, path string) error
	// SignedURL returns a credentialed URL that stops working after ttl.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	PublicURL(path string) string
}
