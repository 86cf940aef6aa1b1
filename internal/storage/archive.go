package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"statement-ingest/pkg/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Archive stores original uploads in an S3-compatible bucket.
type Archive struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewArchive returns nil when no endpoint is configured.
func NewArchive(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*Archive, error) {
	if cfg.Endpoint == "" {
		logger.Info("Document archive disabled")
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connection: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("Created archive bucket", zap.String("bucket", cfg.Bucket))
	}

	return &Archive{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// ObjectKey is <tenant>/<jobId>/<fileName> with the file name reduced to its base.
func ObjectKey(tenantID, jobID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	return path.Join(tenantID, jobID, name)
}

// Store uploads the document and returns its object key.
func (a *Archive) Store(ctx context.Context, tenantID, jobID, fileName, contentType string, data []byte) (string, error) {
	key := ObjectKey(tenantID, jobID, fileName)

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"tenant-id": tenantID,
			"job-id":    jobID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	a.logger.Debug("Document archived", zap.String("bucket", a.bucket), zap.String("key", key))
	return key, nil
}
