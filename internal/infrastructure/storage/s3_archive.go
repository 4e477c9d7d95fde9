// Package storage provides object storage implementations for upload
// archival.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gatetrack/backend/internal/application/ingest"
	infraconfig "github.com/gatetrack/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ensure S3FileArchive implements ingest.FileArchive
var _ ingest.FileArchive = (*S3FileArchive)(nil)

// S3FileArchive archives raw upload files to S3-compatible object storage
// (AWS S3, MinIO, etc.). Keys are date-partitioned under the configured
// prefix so old uploads can be expired with a lifecycle rule.
type S3FileArchive struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	logger    *zap.Logger
	now       func() time.Time
}

// S3FileArchiveOption is a functional option for configuring S3FileArchive
type S3FileArchiveOption func(*S3FileArchive)

// WithLogger sets a custom logger for S3FileArchive
func WithLogger(logger *zap.Logger) S3FileArchiveOption {
	return func(a *S3FileArchive) {
		a.logger = logger
	}
}

// NewS3FileArchive creates an archive from configuration. When no static
// credentials are configured the SDK default credential chain is used.
func NewS3FileArchive(cfg *infraconfig.StorageConfig, opts ...S3FileArchiveOption) (*S3FileArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, errors.New("storage access key and secret key must be set together")
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3FileArchive{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// Archive stores the file and returns its object key
func (a *S3FileArchive) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	key := a.objectKey(filename)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive upload %q: %w", filename, err)
	}

	a.logger.Info("archived upload",
		zap.String("key", key),
		zap.Int("size", len(data)),
	)
	return key, nil
}

func (a *S3FileArchive) objectKey(filename string) string {
	day := a.now().UTC().Format("2006/01/02")
	name := sanitizeFilename(path.Base(filename))
	return path.Join(a.keyPrefix, day, uuid.NewString()+"_"+name)
}

// sanitizeFilename keeps object keys portable across S3-compatible backends
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
