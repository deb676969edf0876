package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // base URL exported objects are reachable under
	Prefix          string // key prefix for exported transcripts
}

// S3Storage stores exported transcripts in an S3-compatible bucket
type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
	prefix    string
	now       func() time.Time
}

// NewS3Storage creates a new S3 storage client
func NewS3Storage(cfg S3Config) *S3Storage {
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		prefix:    strings.Trim(cfg.Prefix, "/"),
		now:       time.Now,
	}
}

// UploadInput represents input for uploading an object
type UploadInput struct {
	Body        []byte
	ContentType string
	// Name is the human readable part of the key, e.g. a session id
	Name string
	// Ext is appended to the key, including the dot
	Ext string
}

// UploadOutput represents output from uploading an object
type UploadOutput struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Upload writes the body under a unique date-partitioned key
func (s *S3Storage) Upload(ctx context.Context, in UploadInput) (*UploadOutput, error) {
	now := s.now().UTC()
	key := ObjectKey(s.prefix, in.Name, in.Ext, now)
	size := int64(len(in.Body))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(in.Body),
		ContentType:   aws.String(in.ContentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}

	return &UploadOutput{
		Key:        key,
		URL:        fmt.Sprintf("%s/%s", s.publicURL, key),
		Size:       size,
		UploadedAt: now,
	}, nil
}

// HealthCheck checks that the bucket is reachable
func (s *S3Storage) HealthCheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ObjectKey builds prefix/yyyy/mm/dd/name-uuid.ext, skipping empty parts
func ObjectKey(prefix, name, ext string, at time.Time) string {
	base := uuid.NewString()
	if name != "" {
		base = name + "-" + base
	}

	parts := make([]string, 0, 2)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, at.Format("2006/01/02"), base+ext)
	return strings.Join(parts, "/")
}
