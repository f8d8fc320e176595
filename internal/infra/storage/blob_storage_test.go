package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"

	_ "gocloud.dev/blob/fileblob"
)

// failingReader simulates a client upload stream that dies mid-copy.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("upload stream interrupted")
}

func createTestStorage(t *testing.T) *blobStorage {
	t.Helper()

	bucket, err := blob.OpenBucket(context.Background(), "file://"+t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bucket.Close() })

	return &blobStorage{
		bucket:        bucket,
		publicBaseURL: "https://cdn.example.com/media",
	}
}

func listKeys(t *testing.T, bucket *blob.Bucket) []string {
	t.Helper()

	var keys []string
	iter := bucket.List(nil)
	for {
		obj, err := iter.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return keys
		}
		require.NoError(t, err)
		keys = append(keys, obj.Key)
	}
}

func TestBlobStorage_Save(t *testing.T) {
	s := createTestStorage(t)

	url, err := s.Save(context.Background(), "Avatar.PNG", strings.NewReader("avatar-bytes"))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/media/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	keys := listKeys(t, s.bucket)
	require.Len(t, keys, 1)

	stored, err := s.bucket.ReadAll(context.Background(), keys[0])
	require.NoError(t, err)
	assert.Equal(t, "avatar-bytes", string(stored))
}

func TestBlobStorage_SaveAbortsOnCopyFailure(t *testing.T) {
	s := createTestStorage(t)

	_, err := s.Save(context.Background(), "avatar.png", failingReader{})

	require.Error(t, err)
	// An interrupted upload must not commit a partial object.
	assert.Empty(t, listKeys(t, s.bucket))
}
