package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
)

// S3Config holds the connection parameters. Static credentials are optional;
// without them the default AWS credential chain applies. A custom endpoint
// switches to path-style addressing for MinIO and similar servers.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	HTTPClient      *http.Client
}

// S3Store implements ObjectStore on a single bucket.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *logging.ChanneledLogger
}

// NewS3Store creates an S3 object store client
func NewS3Store(ctx context.Context, cfg S3Config, logger *logging.ChanneledLogger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: S3_BUCKET is empty", ErrNotConfigured)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})

	logger.Storage().Info("Object storage configured", "bucket", cfg.Bucket, "region", region, "customEndpoint", cfg.Endpoint != "")
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		logger:  logger,
	}, nil
}

// Put uploads an object
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	start := time.Now()
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Storage().Error("Object upload failed", "key", key, "error", err.Error())
		return fmt.Errorf("put object %s: %w", key, err)
	}
	s.logger.Storage().Debug("Object uploaded", "key", key, "size", size, "duration", time.Since(start))
	return nil
}

// PresignGet returns a time-limited download URL for key.
func (s *S3Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) { po.Expires = ttl })
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return out.URL, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
