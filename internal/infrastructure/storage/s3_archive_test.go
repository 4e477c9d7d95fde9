package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gatetrack/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3FileArchive_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3FileArchive(nil)
		assert.ErrorContains(t, err, "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewS3FileArchive(&config.StorageConfig{})
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("partial static credentials", func(t *testing.T) {
		_, err := NewS3FileArchive(&config.StorageConfig{Bucket: "uploads", AccessKey: "key"})
		assert.ErrorContains(t, err, "must be set together")
	})

	t.Run("endpoint gets a scheme", func(t *testing.T) {
		archive, err := NewS3FileArchive(&config.StorageConfig{
			Bucket:       "uploads",
			Endpoint:     "minio.internal:9000",
			UsePathStyle: true,
		})
		require.NoError(t, err)
		assert.NotNil(t, archive)
	})
}

func TestS3FileArchive_ObjectKey(t *testing.T) {
	archive := &S3FileArchive{
		keyPrefix: "uploads",
		now:       func() time.Time { return time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC) },
	}

	key := archive.objectKey("august invoices (final).xlsx")
	assert.True(t, strings.HasPrefix(key, "uploads/2026/08/24/"), key)
	assert.True(t, strings.HasSuffix(key, "_august_invoices__final_.xlsx"), key)
	assert.NotContains(t, key, " ")
}

func TestNoopFileArchive(t *testing.T) {
	key, err := NewNoopFileArchive().Archive(context.Background(), "upload.csv", []byte("data"))
	require.NoError(t, err)
	assert.Empty(t, key)
}
