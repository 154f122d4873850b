// Package local implements a cache store on the local filesystem.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/carry/internal/adapters/cache/archive"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	sidecarExt = ".json"
	lockExt    = ".lock"
)

var _ ports.CacheStore = (*Store)(nil)

// entryInfo is the sidecar written next to every archive.
type entryInfo struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}

// Store implements ports.CacheStore with one archive per key inside a directory.
type Store struct {
	dir     string
	workDir string
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for entry timestamps and stale lock detection.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store keeping entries in dir. Archives are packed from and
// extracted into workDir.
func NewStore(dir, workDir string, opts ...Option) *Store {
	s := &Store{
		dir:     filepath.Clean(dir),
		workDir: workDir,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory entries are kept in.
func (s *Store) Dir() string {
	return s.dir
}

// Available ensures the cache directory exists and is writable.
func (s *Store) Available(_ context.Context) error {
	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheDirCreateFailed.Error()), "dir", s.dir)
	}

	probe, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheUnavailable.Error()), "dir", s.dir)
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return nil
}

// Restore extracts the first entry matching key or one of restoreKeys into the workspace.
// A restore key matches exactly or, failing that, as a prefix of the newest stored key.
// It returns the matched key, or "" when nothing matched.
func (s *Store) Restore(ctx context.Context, paths []string, key string, restoreKeys []string) (string, error) {
	if err := domain.ValidatePaths(paths); err != nil {
		return "", err
	}
	if err := domain.ValidateKeys(key, restoreKeys); err != nil {
		return "", err
	}

	info, err := s.lookup(key, restoreKeys)
	if err != nil || info == nil {
		return "", err
	}

	archivePath := s.archivePath(info.Key)
	//nolint:gosec // Path is derived from the key hash inside the cache directory
	f, err := os.Open(archivePath)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrEntryDownloadFailed.Error()), "key", info.Key)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := archive.Unpack(ctx, s.workDir, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrEntryDownloadFailed.Error()), "key", info.Key)
	}
	return info.Key, nil
}

func (s *Store) lookup(key string, restoreKeys []string) (*entryInfo, error) {
	if info, err := s.readInfo(key); info != nil || err != nil {
		return info, err
	}

	var entries []entryInfo
	for _, restoreKey := range restoreKeys {
		if info, err := s.readInfo(restoreKey); info != nil || err != nil {
			return info, err
		}

		if entries == nil {
			var err error
			if entries, err = s.list(); err != nil {
				return nil, err
			}
		}

		var newest *entryInfo
		for i := range entries {
			if !strings.HasPrefix(entries[i].Key, restoreKey) {
				continue
			}
			if newest == nil || entries[i].CreatedAt.After(newest.CreatedAt) {
				newest = &entries[i]
			}
		}
		if newest != nil {
			return newest, nil
		}
	}
	return nil, nil
}

// readInfo returns the sidecar for key, or nil when no complete entry exists.
func (s *Store) readInfo(key string) (*entryInfo, error) {
	info, err := readSidecar(s.sidecarPath(key))
	if err != nil || info == nil {
		return nil, err
	}
	if info.Key != key {
		// Hash collision with another key.
		return nil, nil
	}
	if _, err := os.Stat(s.archivePath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEntryLookupFailed.Error()), "key", key)
	}
	return info, nil
}

func (s *Store) list() ([]entryInfo, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []entryInfo{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEntryLookupFailed.Error()), "dir", s.dir)
	}

	entries := make([]entryInfo, 0, len(dirEntries))
	for _, d := range dirEntries {
		if d.IsDir() || filepath.Ext(d.Name()) != sidecarExt {
			continue
		}
		info, err := readSidecar(filepath.Join(s.dir, d.Name()))
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		if _, err := os.Stat(s.archivePath(info.Key)); err != nil {
			continue
		}
		entries = append(entries, *info)
	}
	return entries, nil
}

func readSidecar(path string) (*entryInfo, error) {
	//nolint:gosec // Path is inside the cache directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEntryLookupFailed.Error()), "path", path)
	}

	var info entryInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEntryLookupFailed.Error()), "path", path)
	}
	return &info, nil
}

// Save packs paths into a new entry for key. An existing entry, or a reservation held
// by another process, yields a *domain.ReserveCacheError.
func (s *Store) Save(ctx context.Context, paths []string, key string, opts domain.SaveOptions) error {
	if err := domain.ValidatePaths(paths); err != nil {
		return err
	}
	if err := domain.ValidateKeys(key, nil); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheDirCreateFailed.Error()), "dir", s.dir)
	}

	release, err := s.reserve(key)
	if err != nil {
		return err
	}
	defer release()

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
	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		return zerr.Wrap(err, domain.ErrEntryUploadFailed.Error())
	}

	size, err := s.commit(staged, key, chunkSize(opts))
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEntryUploadFailed.Error()), "key", key)
	}

	return s.writeSidecar(entryInfo{Key: key, CreatedAt: s.now().UTC(), Size: size})
}

// reserve takes the lock file for key. Locks older than domain.LockStaleAfter are broken.
func (s *Store) reserve(key string) (func(), error) {
	if info, err := s.readInfo(key); err != nil {
		return nil, err
	} else if info != nil {
		return nil, domain.NewReserveCacheError(key)
	}

	lockPath := s.entryBase(key) + lockExt
	for attempt := 0; attempt < 2; attempt++ {
		//nolint:gosec // Path is inside the cache directory
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.PrivateFilePerm)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrEntryUploadFailed.Error()), "lock", lockPath)
		}

		stat, statErr := os.Stat(lockPath)
		if statErr != nil || s.now().Sub(stat.ModTime()) < domain.LockStaleAfter {
			break
		}
		_ = os.Remove(lockPath)
	}
	return nil, domain.NewReserveCacheError(key)
}

// commit copies the staged archive into place in chunks and renames it over the final name.
func (s *Store) commit(src io.Reader, key string, chunk int64) (int64, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	var size int64
	for {
		n, err := io.CopyN(tmp, src, chunk)
		size += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = tmp.Close()
			return 0, err
		}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return 0, err
	}
	return size, os.Rename(tmp.Name(), s.archivePath(key))
}

func (s *Store) writeSidecar(info entryInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrEntryUploadFailed.Error())
	}

	path := s.sidecarPath(info.Key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEntryUploadFailed.Error()), "path", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrEntryUploadFailed.Error()), "path", path)
	}
	return nil
}

func chunkSize(opts domain.SaveOptions) int64 {
	if opts.UploadChunkSize > 0 {
		return opts.UploadChunkSize
	}
	return domain.DefaultUploadChunkSize
}

func (s *Store) entryBase(key string) string {
	return filepath.Join(s.dir, strconv.FormatUint(xxhash.Sum64String(key), 16))
}

func (s *Store) archivePath(key string) string {
	return s.entryBase(key) + archive.Extension
}

func (s *Store) sidecarPath(key string) string {
	return s.entryBase(key) + sidecarExt
}
