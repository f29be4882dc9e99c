package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for S3 or any S3-compatible service.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PathStyle bool
}

// MinioClient implements ObjectStorage on top of minio-go.
type MinioClient struct {
	client *minio.Client
	bucket string
}

// NewMinioClient builds a client for the configured bucket. Without static
// keys the credentials come from the AWS environment, shared credentials
// file or instance role, in that order.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	useSSL := cfg.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = strings.TrimPrefix(endpoint, "https://")
		useSSL = true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = strings.TrimPrefix(endpoint, "http://")
		useSSL = false
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	var creds *credentials.Credentials
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
		})
	}

	lookup := minio.BucketLookupAuto
	if cfg.PathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        creds,
		Secure:       useSSL,
		Region:       region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &MinioClient{client: client, bucket: cfg.Bucket}, nil
}

// Bucket returns the bucket every call operates on.
func (c *MinioClient) Bucket() string {
	return c.bucket
}

// ListObjects lists all current objects for a given prefix, following every page.
func (c *MinioClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, object.Err)
		}
		results = append(results, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			ETag:         strings.Trim(object.ETag, `"`),
			LastModified: object.LastModified,
		})
	}
	return results, nil
}

// GetObject reads the current version of key.
func (c *MinioClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	object, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapNotFound(key, err)
	}
	defer object.Close()

	body, err := io.ReadAll(object)
	if err != nil {
		return nil, wrapNotFound(key, err)
	}
	return body, nil
}

// PutObject uploads data as the new current version of key.
func (c *MinioClient) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// ListObjectVersions returns the versions and delete markers of exactly key,
// newest first as reported by the store.
func (c *MinioClient) ListObjectVersions(ctx context.Context, key string) ([]ObjectVersion, error) {
	versions := make([]ObjectVersion, 0)
	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:       key,
		Recursive:    true,
		WithVersions: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list versions of %s: %w", key, object.Err)
		}
		// the listing is by prefix; keep only this exact key
		if object.Key != key {
			continue
		}
		versions = append(versions, ObjectVersion{
			Key:            object.Key,
			VersionID:      object.VersionID,
			IsLatest:       object.IsLatest,
			IsDeleteMarker: object.IsDeleteMarker,
			LastModified:   object.LastModified,
			Size:           object.Size,
		})
	}
	return versions, nil
}

// CopyObjectVersion makes versionID the current version of key by copying it onto itself.
func (c *MinioClient) CopyObjectVersion(ctx context.Context, key, versionID string) error {
	_, err := c.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: key},
		minio.CopySrcOptions{Bucket: c.bucket, Object: key, VersionID: versionID},
	)
	if err != nil {
		return fmt.Errorf("copy %s@%s: %w", key, versionID, err)
	}
	return nil
}

func wrapNotFound(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("get %s: %w", key, ErrObjectNotFound)
	}
	return fmt.Errorf("get %s: %w", key, err)
}

var _ ObjectStorage = (*MinioClient)(nil)
