package services

import (
	"context"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/damacus/trash-lens/internal/models"
	"github.com/damacus/trash-lens/internal/utils"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultPageSize is the maximum number of archived photos listed at once
const DefaultPageSize = 100

// PresignExpiry is how long a Past Photos download link stays valid
const PresignExpiry = 15 * time.Minute

const uploadsPrefix = "uploads/"

// ArchiveConfig holds the connection details of the photo archive bucket
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// Secure overrides endpoint based TLS detection when set
	Secure *bool
}

// Enabled reports whether an archive endpoint was configured
func (c ArchiveConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// Archive stores uploaded photos for the Past Photos page
type Archive interface {
	Store(ctx context.Context, sessionID, name string, reader io.Reader, size int64, contentType string) error
	List(ctx context.Context, sessionID string) ([]models.PhotoInfo, error)
}

// MinioClient is an interface for the S3 methods the archive uses
type MinioClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) ([]minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// WrappedMinioClient wraps minio.Client to implement our interface
type WrappedMinioClient struct {
	client *minio.Client
}

func (c *WrappedMinioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return c.client.BucketExists(ctx, bucketName)
}

func (c *WrappedMinioClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return c.client.MakeBucket(ctx, bucketName, opts)
}

func (c *WrappedMinioClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return c.client.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

func (c *WrappedMinioClient) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo
	for obj := range c.client.ListObjects(ctx, bucketName, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, obj)
		if len(objects) >= DefaultPageSize {
			break
		}
	}
	return objects, nil
}

func (c *WrappedMinioClient) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	return c.client.PresignedGetObject(ctx, bucketName, objectName, expires, reqParams)
}

// shouldUseSSL determines if SSL should be used based on the endpoint.
// Returns false for localhost, 127.0.0.1, and docker service names.
func shouldUseSSL(endpoint string) bool {
	if endpoint == "localhost:9000" || endpoint == "127.0.0.1:9000" {
		return false
	}
	// Docker service names (minio:9000, minio1:9000, ...), not domain names like minio.example.com
	if strings.HasPrefix(endpoint, "minio") && !strings.Contains(strings.Split(endpoint, ":")[0], ".") && strings.Contains(endpoint, ":9000") {
		return false
	}
	return true
}

// NewMinioClient connects to the archive endpoint
func NewMinioClient(cfg ArchiveConfig) (MinioClient, error) {
	secure := shouldUseSSL(cfg.Endpoint)
	if cfg.Secure != nil {
		secure = *cfg.Secure
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return &WrappedMinioClient{client: client}, nil
}

// MinioArchive keeps photos in a single bucket, one prefix per session
type MinioArchive struct {
	client MinioClient
	bucket string
}

// NewMinioArchive makes sure the bucket exists and returns the archive
func NewMinioArchive(ctx context.Context, client MinioClient, bucket, region string) (*MinioArchive, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}
	return &MinioArchive{client: client, bucket: bucket}, nil
}

// ObjectKey is where a session's photo is stored
func ObjectKey(sessionID, name string) string {
	return uploadsPrefix + sessionID + "/" + path.Base(name)
}

func (a *MinioArchive) Store(ctx context.Context, sessionID, name string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := a.client.PutObject(ctx, a.bucket, ObjectKey(sessionID, name), reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// List returns the session's photos, newest first
func (a *MinioArchive) List(ctx context.Context, sessionID string) ([]models.PhotoInfo, error) {
	objects, err := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    uploadsPrefix + sessionID + "/",
		Recursive: true,
	})
	if err != nil {
		return nil, err
	}

	photos := make([]models.PhotoInfo, 0, len(objects))
	for _, obj := range objects {
		photo := models.PhotoInfo{
			Key:           obj.Key,
			Name:          path.Base(obj.Key),
			Size:          obj.Size,
			FormattedSize: utils.FormatFileSize(obj.Size),
			LastModified:  obj.LastModified,
		}
		if u, err := a.client.PresignedGetObject(ctx, a.bucket, obj.Key, PresignExpiry, nil); err == nil {
			photo.URL = u.String()
		}
		photos = append(photos, photo)
	}

	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].LastModified.After(photos[j].LastModified)
	})
	return photos, nil
}
