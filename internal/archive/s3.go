package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds connection settings for an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Exporter uploads archives to a bucket.
type S3Exporter struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

// NewS3Exporter connects to the configured endpoint. An empty endpoint
// returns ErrArchiveDisabled.
func NewS3Exporter(cfg S3Config) (*S3Exporter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, domain.ErrArchiveDisabled
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Exporter{client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Exporter) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Export uploads data as the archive for one generation.
func (s *S3Exporter) Export(ctx context.Context, sessionID, generationID string, data []byte) (*domain.ExportResponse, error) {
	key, err := ObjectKey(sessionID, generationID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	info, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	return &domain.ExportResponse{Bucket: s.bucketName, Key: info.Key, Size: info.Size}, nil
}

// ObjectKey is where the archive for a generation is stored.
func ObjectKey(sessionID, generationID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	generationID = strings.TrimSpace(generationID)
	if sessionID == "" || generationID == "" {
		return "", fmt.Errorf("%w: session and generation ids are required", domain.ErrInvalidInput)
	}
	return sessionID + "/" + generationID + "/" + FileName, nil
}
