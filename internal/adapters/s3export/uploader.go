// Package s3export uploads generated reports to an S3-compatible bucket
// (AWS S3 or MinIO).
package s3export

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// Config holds construction parameters. Credentials come from the default
// AWS chain (environment, shared config, instance role).
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	PathStyle bool
	Prefix    string // optional key prefix such as "exports/"

	// HTTPClient overrides the transport; tests use it to fake S3.
	HTTPClient *http.Client
	// LoadOptions are passed through to config.LoadDefaultConfig.
	LoadOptions []func(*config.LoadOptions) error
}

// Uploader implements secondary.BlobUploader.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ secondary.BlobUploader = (*Uploader)(nil)

// New creates an uploader for cfg.Bucket.
func New(ctx context.Context, cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := append([]func(*config.LoadOptions) error{config.WithRegion(region)}, cfg.LoadOptions...)
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Upload stores body under key, overwriting any previous export with the
// same name, and returns the object's s3:// location.
func (u *Uploader) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	fullKey := u.prefix + key
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(fullKey),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", fullKey, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, fullKey), nil
}
