package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Uploader stores a media object and returns its public URL. A failed upload
// returns an error; callers decide whether the object was mandatory.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
}

// Config holds S3-compatible object storage configuration (MinIO in
// development, S3 proper in production).
type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
}

type S3Uploader struct {
	client *s3.Client
	config Config
}

// NewS3Uploader builds the S3 client once; credentials are static, the
// endpoint may point at any S3-compatible store.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Uploader{client: client, config: cfg}, nil
}

// ObjectKey returns a date-partitioned random key for an uploaded object.
func ObjectKey() string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%02d/%02d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (u *S3Uploader) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	key := ObjectKey()

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.config.Bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	base := strings.TrimSuffix(u.config.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", u.config.Bucket, u.config.Region)
		return base + "/" + key
	}
	if u.config.UsePathStyle {
		return base + "/" + u.config.Bucket + "/" + key
	}
	return base + "/" + key
}
