package service

import (
	"context"
	"io"
)

// MediaStorage defines the interface for persisting uploaded media (avatars,
// cover images) to durable remote storage. The core treats the returned
// reference as an opaque string stored on the identity record.
type MediaStorage interface {
	// Save writes the upload to the bucket under a generated key and returns a
	// durable reference URL for it.
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
}
