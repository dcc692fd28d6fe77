package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(context.Background(), Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(context.Background(), Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		b, ok := backend.(*Backend)
		require.True(t, ok)
		assert.Equal(t, "us-east-1", b.config.Region)
		assert.Equal(t, "test-bucket", b.bucket)
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &types.NoSuchKey{})))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchBucket"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(io.EOF))
}

// TestS3Backend_MinIO runs against an S3-compatible endpoint when
// TEST_S3_ENDPOINT is set (e.g. http://localhost:9000).
func TestS3Backend_MinIO(t *testing.T) {
	endpoint := os.Getenv("TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_S3_ENDPOINT not set")
	}

	ctx := context.Background()
	backend, err := New(ctx, Config{
		Region:                 "us-east-1",
		Bucket:                 "dri-test",
		AccessKeyID:            os.Getenv("TEST_S3_ACCESS_KEY"),
		SecretAccessKey:        os.Getenv("TEST_S3_SECRET_KEY"),
		Endpoint:               endpoint,
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	key := fmt.Sprintf("test/%d/file.txt", time.Now().UnixNano())
	content := []byte("hello archive")

	require.NoError(t, backend.Upload(ctx, key, bytes.NewReader(content)))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), meta.Size)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, backend.Delete(ctx, key))

	_, err = backend.GetObjectMeta(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
