// Package s3 implements the blob-store port on S3-compatible object
// storage (MinIO, AWS S3). Useful when the catalog is shared across
// machines and the raw PDFs should not live on a single disk.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string
	Prefix          string // optional key prefix, e.g. "scandex/blobs"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// BlobStore wraps the MinIO/S3 client for raw document storage.
type BlobStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a new S3/MinIO blob store.
func New(config Config) (*BlobStore, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	return &BlobStore{
		client: client,
		bucket: config.Bucket,
		prefix: config.Prefix,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (b *BlobStore) EnsureBucket(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket: %w", err)
	}
	return nil
}

// Put uploads the bytes and returns the object key as the ref.
func (b *BlobStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(b.prefix, name)
	_, err := b.client.PutObject(ctx, b.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("uploading blob: %w", err)
	}
	return key, nil
}

// Get downloads the bytes for an object key.
func (b *BlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching blob: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

// Delete removes the object for a key.
func (b *BlobStore) Delete(ctx context.Context, ref string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}
