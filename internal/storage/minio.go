package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// Metadata field names attached to every stored object. S3 providers
// lower-case user metadata keys, so these start out lower-case.
const (
	metaContentCategory = "type"
	metaPublic          = "public"
	metaDisplayName     = "display_name"
)

// MinioStore implements Store using a MinIO (or any S3-compatible) backend.
// Listing goes through the low-level Core API so callers see real page
// boundaries and can stop paging early.
type MinioStore struct {
	core   *minio.Core
	bucket string
	log    *logrus.Entry
}

// NewMinioStore creates a MinIO client, ensures the bucket exists, and
// returns a ready-to-use MinioStore. Uploaded items are private; no bucket
// policy is applied.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logrus.Logger) (*MinioStore, error) {
	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()

	exists, err := core.Client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := core.Client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Infof("storage: created bucket %q", bucket)
	}

	return &MinioStore{
		core:   core,
		bucket: bucket,
		log:    log.WithField("component", "storage"),
	}, nil
}

// Put writes data under key with the item metadata from opts.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, opts PutOptions) error {
	public := "false"
	if opts.Public {
		public = "true"
	}
	_, err := s.core.Client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
		UserMetadata: map[string]string{
			metaContentCategory: opts.ContentCategory,
			metaPublic:          public,
			metaDisplayName:     opts.DisplayName,
		},
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Get buffers the object at key, refusing objects whose reported size
// exceeds limit before reading the body.
func (s *MinioStore) Get(ctx context.Context, key string, limit int64) ([]byte, error) {
	obj, err := s.core.Client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %q: %w", key, err)
	}
	if limit > 0 && stat.Size > limit {
		return nil, fmt.Errorf("object %q is %d bytes: %w", key, stat.Size, ErrTooLarge)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	s.log.Debugf("read %d bytes from %q", len(data), key)
	return data, nil
}

// Exists reports whether an object is stored under key.
func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.core.Client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object %q: %w", key, err)
	}
	return true, nil
}

// Delete removes the object at key, reporting whether it existed.
func (s *MinioStore) Delete(ctx context.Context, key string) (bool, error) {
	existed, err := s.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if !existed {
		return false, nil
	}
	if err := s.core.Client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove object %q: %w", key, err)
	}
	return true, nil
}

// List returns one page of keys under prefix via ListObjectsV2, exposing the
// store's own continuation token so callers control how far they page.
func (s *MinioStore) List(ctx context.Context, prefix, token string, pageSize int) (Page, error) {
	res, err := s.core.ListObjectsV2(s.bucket, prefix, "", token, "", pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list objects under %q: %w", prefix, err)
	}
	page := Page{
		NextToken: res.NextContinuationToken,
		Truncated: res.IsTruncated,
	}
	for _, obj := range res.Contents {
		page.Objects = append(page.Objects, Object{Key: obj.Key, Size: obj.Size})
	}
	return page, nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
