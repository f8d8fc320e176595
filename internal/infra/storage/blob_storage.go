// Package storage persists uploaded media through gocloud.dev blob buckets.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Driver for local file:// buckets; cloud buckets register their own driver
	// through the bucket URL scheme.
	_ "gocloud.dev/blob/fileblob"

	"cliptube/config"
	"cliptube/internal/domain/lifecycle"
	"cliptube/internal/domain/service"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
}

// blobStorage implements service.MediaStorage on top of a gocloud blob bucket.
type blobStorage struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

// New opens the configured bucket and returns it as a service.MediaStorage.
func New(params Params) (service.MediaStorage, error) {
	if params.Config.Storage == nil || params.Config.Storage.BucketURL == "" {
		return nil, errors.New("storage bucket url must be provided")
	}

	openCtx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(openCtx, params.Config.Storage.BucketURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open media bucket")
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	return &blobStorage{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(params.Config.Storage.PublicBaseURL, "/"),
	}, nil
}

// Save writes the upload under a generated key and returns its durable URL.
func (s *blobStorage) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	key := uuid.New().String() + strings.ToLower(path.Ext(filename))

	// Close commits whatever was buffered; canceling the writer's context is
	// the only way to abort, so the error path cancels before closing.
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer, err := s.bucket.NewWriter(writeCtx, key, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to open bucket writer")
	}

	if _, err := io.Copy(writer, content); err != nil {
		cancel()
		_ = writer.Close()

		return "", errors.Wrap(err, "failed to write media object")
	}

	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "failed to commit media object")
	}

	return s.publicBaseURL + "/" + key, nil
}
