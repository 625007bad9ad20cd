package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

var ErrObjectNotFound = errors.New("object not found")

// StoredObject is what a storage backend reports after a successful save.
type StoredObject struct {
	Key      string
	Filename string
	Checksum string
	Size     int64
}

type ObjectStorage interface {
	// Save stores data under a key derived from filename. Existing objects
	// are never overwritten.
	Save(ctx context.Context, filename string, contentType string, data []byte) (StoredObject, error)
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, key string) error
	// Location is the URL path a browser uses to fetch the object.
	Location(key string) string
}

func hashSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func joinLocation(prefix, key string) string {
	return prefix + "/" + key
}

type minioStorage struct {
	client     *minio.Client
	bucketName string
	urlPrefix  string
}

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool, bucket, urlPrefix string) (ObjectStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %s", bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "create bucket %s", bucket)
		}
	}

	return &minioStorage{
		client:     client,
		bucketName: bucket,
		urlPrefix:  urlPrefix,
	}, nil
}

// Keys are "<uuid>/<filename>" so the original name survives in the URL
// without collisions.
func (s *minioStorage) Save(ctx context.Context, filename string, contentType string, data []byte) (StoredObject, error) {
	objectKey := path.Join(uuid.NewString(), filename)
	size := int64(len(data))

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, bytes.NewReader(data), size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"filename": filename},
	})
	if err != nil {
		return StoredObject{}, errors.Wrapf(err, "put object %s", objectKey)
	}

	return StoredObject{
		Key:      objectKey,
		Filename: filename,
		Checksum: hashSHA256(data),
		Size:     size,
	}, nil
}

func (s *minioStorage) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "get object %s", key)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, errors.Wrapf(err, "stat object %s", key)
	}
	return obj, info.Size, nil
}

func (s *minioStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{})
}

func (s *minioStorage) Location(key string) string {
	return joinLocation(s.urlPrefix, key)
}
