// Package storage writes exported documents to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"cfp-api/core/config"
	"cfp-api/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Publisher interface {
	PutJSON(ctx context.Context, key string, value any) error
}

// ObjectKey joins the configured prefix with the given parts.
func ObjectKey(prefix string, parts ...string) string {
	return path.Join(append([]string{prefix}, parts...)...)
}

type S3Publisher struct {
	client *s3.Client
	bucket string
}

func NewS3Publisher(cfg config.StorageConfig) *S3Publisher {
	opts := s3.Options{
		Region: cfg.Region,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return &S3Publisher{client: s3.New(opts), bucket: cfg.Bucket}
}

// NewPublisher returns an S3 publisher when storage is enabled and a
// no-op publisher otherwise.
func NewPublisher(cfg config.StorageConfig) Publisher {
	if !cfg.Enabled {
		return NoopPublisher{}
	}
	return NewS3Publisher(cfg)
}

func (p *S3Publisher) PutJSON(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		logger.Error("S3Publisher:PutJSON", "bucket", p.bucket, "key", key, "error", err)
		return err
	}
	logger.Info("S3Publisher:PutJSON", "bucket", p.bucket, "key", key, "bytes", len(body))
	return nil
}

type NoopPublisher struct{}

func (NoopPublisher) PutJSON(context.Context, string, any) error { return nil }

// MemoryPublisher keeps documents in memory, keyed by object key.
type MemoryPublisher struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{Objects: map[string][]byte{}}
}

func (p *MemoryPublisher) PutJSON(_ context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.Objects[key] = body
	p.mu.Unlock()
	return nil
}
