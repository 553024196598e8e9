// Package s3sink archives request records as gzipped JSON batches in an
// S3-compatible bucket.
package s3sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/akave-ai/alephweb/internal/config"
)

// ObjectAPI is the subset of *s3.Client the archive uses.
type ObjectAPI interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client uploads archive objects to one bucket.
type Client struct {
	api    ObjectAPI
	bucket string
}

// NewClient builds a path-style client for the configured endpoint.
func NewClient(cfg *config.ArchiveConfig) (*Client, error) {
	if cfg == nil || cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("archive endpoint and bucket are required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	api := s3.NewFromConfig(aws.Config{
		Region:      region,
		Credentials: aws.NewCredentialsCache(creds),
	}, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &Client{api: api, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket if HeadBucket cannot see it.
func (c *Client) EnsureBucket(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err == nil {
		return nil
	}
	_, createErr := c.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)})
	if createErr != nil {
		var apiErr smithy.APIError
		if errors.As(createErr, &apiErr) {
			switch apiErr.ErrorCode() {
			case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
				return nil
			}
		}
		return fmt.Errorf("create bucket %s: %w", c.bucket, createErr)
	}
	return nil
}

// PutObject uploads data to key.
func (c *Client) PutObject(ctx context.Context, key string, data []byte, contentType, contentEncoding string) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if contentEncoding != "" {
		in.ContentEncoding = aws.String(contentEncoding)
	}
	_, err := c.api.PutObject(ctx, in)
	return err
}

// KeyForBatch returns the object key of a batch, e.g. events/2024/01/15/<id>.json.gz.
func KeyForBatch(prefix string, now time.Time, batchID string) string {
	if prefix == "" {
		prefix = "events"
	}
	return path.Join(prefix, now.UTC().Format("2006/01/02"), batchID+".json.gz")
}
