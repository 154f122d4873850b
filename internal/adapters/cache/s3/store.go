// Package s3 implements a cache store on S3-compatible object storage.
package s3

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.trai.ch/carry/internal/adapters/cache/archive"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	objectName  = "cache" + archive.Extension
	contentType = "application/zstd"
	// metaKey is stored as x-amz-meta-carry-key.
	metaKey = "carry-key"
)

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore with one object per key under a bucket prefix.
type Store struct {
	client  *minio.Client
	bucket  string
	prefix  string
	workDir string
}

// New creates a Store from configuration, dialing nothing until the first request.
func New(cfg domain.S3Config, workDir string) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheUnavailable.Error()), "endpoint", cfg.Endpoint)
	}
	return NewWithClient(client, cfg.Bucket, cfg.Prefix, workDir), nil
}

// NewWithClient creates a Store around an existing client.
func NewWithClient(client *minio.Client, bucket, prefix, workDir string) *Store {
	return &Store{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		workDir: workDir,
	}
}

// Available checks that the bucket exists and is reachable.
func (s *Store) Available(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheUnavailable.Error()), "bucket", s.bucket)
	}
	if !exists {
		return zerr.With(domain.ErrCacheUnavailable, "bucket", s.bucket)
	}
	return nil
}

// Restore downloads and extracts the first object matching key or one of restoreKeys.
// A restore key matches exactly or, failing that, as a prefix of the most recently
// modified object. It returns the matched key, or "" when nothing matched.
func (s *Store) Restore(ctx context.Context, paths []string, key string, restoreKeys []string) (string, error) {
	if err := domain.ValidatePaths(paths); err != nil {
		return "", err
	}
	if err := domain.ValidateKeys(key, restoreKeys); err != nil {
		return "", err
	}

	matched, err := s.lookup(ctx, key, restoreKeys)
	if err != nil || matched == "" {
		return "", err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(matched), minio.GetObjectOptions{})
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrEntryDownloadFailed.Error()), "key", matched)
	}
	defer func() {
		_ = obj.Close()
	}()

	if err := archive.Unpack(ctx, s.workDir, obj); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrEntryDownloadFailed.Error()), "key", matched)
	}
	return matched, nil
}

func (s *Store) lookup(ctx context.Context, key string, restoreKeys []string) (string, error) {
	if ok, err := s.exists(ctx, key); err != nil {
		return "", err
	} else if ok {
		return key, nil
	}

	for _, restoreKey := range restoreKeys {
		if ok, err := s.exists(ctx, restoreKey); err != nil {
			return "", err
		} else if ok {
			return restoreKey, nil
		}

		newest, err := s.newest(ctx, restoreKey)
		if err != nil || newest != "" {
			return newest, err
		}
	}
	return "", nil
}

// newest returns the most recently modified key starting with keyPrefix.
func (s *Store) newest(ctx context.Context, keyPrefix string) (string, error) {
	var (
		best minio.ObjectInfo
		key  string
	)
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix + keyPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return "", zerr.With(zerr.Wrap(object.Err, domain.ErrEntryLookupFailed.Error()), "prefix", keyPrefix)
		}
		if !strings.HasSuffix(object.Key, "/"+objectName) {
			continue
		}
		if key == "" || object.LastModified.After(best.LastModified) {
			best = object
			key = strings.TrimSuffix(strings.TrimPrefix(object.Key, s.prefix), "/"+objectName)
		}
	}
	return key, nil
}

func (s *Store) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.objectKey(key), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NotFound" {
		return false, nil
	}
	return false, zerr.With(zerr.Wrap(err, domain.ErrEntryLookupFailed.Error()), "key", key)
}

// Save packs paths and uploads them under key, using the upload chunk size as the
// multipart part size. An existing object yields a *domain.ReserveCacheError.
func (s *Store) Save(ctx context.Context, paths []string, key string, opts domain.SaveOptions) error {
	if err := domain.ValidatePaths(paths); err != nil {
		return err
	}
	if err := domain.ValidateKeys(key, nil); err != nil {
		return err
	}

	if ok, err := s.exists(ctx, key); err != nil {
		return err
	} else if ok {
		return domain.NewReserveCacheError(key)
	}

	staged, err := os.CreateTemp("", "carry-*"+archive.Extension)
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
	}
	defer func() {
		_ = staged.Close()
		_ = os.Remove(staged.Name())
	}()

	if _, err := archive.Pack(ctx, s.workDir, paths, staged); err != nil {
		return err
	}
	size, err := staged.Seek(0, io.SeekEnd)
	if err != nil {
		return zerr.Wrap(err, domain.ErrEntryUploadFailed.Error())
	}
	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		return zerr.Wrap(err, domain.ErrEntryUploadFailed.Error())
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.objectKey(key), staged, size, minio.PutObjectOptions{
		ContentType:  contentType,
		PartSize:     partSize(opts),
		UserMetadata: map[string]string{metaKey: key},
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEntryUploadFailed.Error()), "key", key)
	}
	return nil
}

func (s *Store) objectKey(key string) string {
	return s.prefix + key + "/" + objectName
}

func partSize(opts domain.SaveOptions) uint64 {
	size := opts.UploadChunkSize
	if size <= 0 {
		size = domain.DefaultUploadChunkSize
	}
	//nolint:gosec // Bounded below by MinS3PartSize
	return uint64(max(size, domain.MinS3PartSize))
}
