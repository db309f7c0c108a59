package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"photolock/api/internal/config"
	"photolock/api/internal/models"
)

// ObjectStore wraps the object-store collaborator: camera gallery buckets are
// read-only from here (list + signed GET), the posts bucket is written on
// post creation.
type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{client: client, cfg: cfg}, nil
}

func (s *ObjectStore) EnsurePostsBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.BucketPosts)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.BucketPosts, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.BucketPosts, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.BucketPosts, err)
		}
	}
	return nil
}

func (s *ObjectStore) PostsBucket() string {
	return s.cfg.BucketPosts
}

// PresignGet issues a time-limited GET URL for an object. Callers should go
// through SignedURLCache instead of hitting this directly on hot paths.
func (s *ObjectStore) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

// ListMedia lists a camera gallery bucket, newest first, keeping only the
// recognized media containers (.png display images, .mp4 display videos).
func (s *ObjectStore) ListMedia(ctx context.Context, bucket string) ([]models.MediaReference, error) {
	type entry struct {
		key      string
		modified time.Time
	}

	var entries []entry
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list %s: %w", bucket, object.Err)
		}
		if !strings.HasSuffix(object.Key, ".png") && !strings.HasSuffix(object.Key, ".mp4") {
			continue
		}
		entries = append(entries, entry{key: object.Key, modified: object.LastModified})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modified.After(entries[j].modified)
	})

	refs := make([]models.MediaReference, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, models.MediaReference{
			Key:     e.key,
			IsVideo: strings.HasSuffix(e.key, ".mp4"),
		})
	}
	return refs, nil
}

func (s *ObjectStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *ObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (s *ObjectStore) Stat(ctx context.Context, bucket, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}
	return info.Size, nil
}

func (s *ObjectStore) Remove(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// RemoveOlderThan deletes posts-bucket objects whose last modification is
// before the cutoff. Used by the worker's cleanup task for staging leftovers.
func (s *ObjectStore) RemoveOlderThan(ctx context.Context, bucket, prefix string, cutoff time.Time) (int, error) {
	removed := 0
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return removed, fmt.Errorf("list %s: %w", bucket, object.Err)
		}
		if !object.LastModified.Before(cutoff) {
			continue
		}
		if err := s.client.RemoveObject(ctx, bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("remove object %s/%s: %w", bucket, object.Key, err)
		}
		removed++
	}
	return removed, nil
}
