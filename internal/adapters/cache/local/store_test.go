package local_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/carry/internal/adapters/cache/local"
	"go.trai.ch/carry/internal/core/domain"
)

type fixture struct {
	cacheDir string
	src      string
	dst      string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		cacheDir: filepath.Join(t.TempDir(), "cache"),
		src:      t.TempDir(),
		dst:      t.TempDir(),
	}
	writeFile(t, f.src, "build/abc123/uuid", "abc123")
	writeFile(t, f.src, "build/abc123/lib.a", "archive")
	return f
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

// tick returns a clock that advances one minute per call.
func tick() func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func TestStore_Available(t *testing.T) {
	f := newFixture(t)
	store := local.NewStore(f.cacheDir, f.src)

	require.NoError(t, store.Available(context.Background()))
	assert.DirExists(t, f.cacheDir)
}

func TestStore_Available_NotWritable(t *testing.T) {
	f := newFixture(t)
	// A regular file where the directory should be.
	require.NoError(t, os.WriteFile(f.cacheDir, []byte("x"), domain.FilePerm))

	store := local.NewStore(f.cacheDir, f.src)
	err := store.Available(context.Background())
	assert.ErrorContains(t, err, domain.ErrCacheDirCreateFailed.Error())
}

func TestStore_SaveRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saver := local.NewStore(f.cacheDir, f.src)
	require.NoError(t, saver.Save(ctx, []string{"build/abc123"}, "abc123", domain.SaveOptions{UploadChunkSize: 7}))

	restorer := local.NewStore(f.cacheDir, f.dst)
	matched, err := restorer.Restore(ctx, []string{"build/abc123"}, "abc123", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", matched)

	data, err := os.ReadFile(filepath.Join(f.dst, "build", "abc123", "lib.a"))
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))
}

func TestStore_Restore_NotFound(t *testing.T) {
	f := newFixture(t)
	store := local.NewStore(f.cacheDir, f.dst)

	matched, err := store.Restore(context.Background(), []string{"build"}, "missing", []string{"miss"})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestStore_Restore_RestoreKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := local.NewStore(f.cacheDir, f.src, local.WithClock(tick()))

	for _, key := range []string{"deps-linux-1", "deps-linux-2", "deps-macos-1"} {
		require.NoError(t, store.Save(ctx, []string{"build"}, key, domain.SaveOptions{}))
	}

	tests := []struct {
		name        string
		key         string
		restoreKeys []string
		want        string
	}{
		{name: "primary key wins", key: "deps-linux-1", restoreKeys: []string{"deps-"}, want: "deps-linux-1"},
		{name: "prefix picks newest", key: "deps-linux-3", restoreKeys: []string{"deps-linux-"}, want: "deps-linux-2"},
		{name: "restore keys in order", key: "none", restoreKeys: []string{"deps-macos-", "deps-linux-"}, want: "deps-macos-1"},
		{name: "exact restore key before prefix", key: "none", restoreKeys: []string{"deps-linux-1"}, want: "deps-linux-1"},
		{name: "no match", key: "none", restoreKeys: []string{"other-"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restorer := local.NewStore(f.cacheDir, t.TempDir())
			matched, err := restorer.Restore(ctx, []string{"build"}, tt.key, tt.restoreKeys)
			require.NoError(t, err)
			assert.Equal(t, tt.want, matched)
		})
	}
}

func TestStore_Save_Reserve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := local.NewStore(f.cacheDir, f.src)

	require.NoError(t, store.Save(ctx, []string{"build"}, "abc123", domain.SaveOptions{}))

	err := store.Save(ctx, []string{"build"}, "abc123", domain.SaveOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsReserveCacheError(err))
	assert.EqualError(t, err, "Unable to reserve cache with key abc123, another job may be creating this cache.")
}

func lockPath(dir, key string) string {
	return filepath.Join(dir, strconv.FormatUint(xxhash.Sum64String(key), 16)+".lock")
}

func TestStore_Save_Locked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(f.cacheDir, domain.DirPerm))
	require.NoError(t, os.WriteFile(lockPath(f.cacheDir, "abc123"), []byte("1"), domain.PrivateFilePerm))

	t.Run("fresh lock", func(t *testing.T) {
		store := local.NewStore(f.cacheDir, f.src)
		err := store.Save(ctx, []string{"build"}, "abc123", domain.SaveOptions{})
		assert.True(t, domain.IsReserveCacheError(err))
	})

	t.Run("stale lock is broken", func(t *testing.T) {
		later := func() time.Time { return time.Now().Add(time.Hour) }
		store := local.NewStore(f.cacheDir, f.src, local.WithClock(later))
		require.NoError(t, store.Save(ctx, []string{"build"}, "abc123", domain.SaveOptions{}))
		assert.NoFileExists(t, lockPath(f.cacheDir, "abc123"))
	})
}

func TestStore_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := local.NewStore(f.cacheDir, f.src)

	tooMany := make([]string, domain.MaxKeyCount)
	for i := range tooMany {
		tooMany[i] = "k" + strconv.Itoa(i)
	}

	tests := []struct {
		name string
		run  func() error
		msg  string
	}{
		{
			name: "restore without paths",
			run: func() error {
				_, err := store.Restore(ctx, nil, "key", nil)
				return err
			},
			msg: "Path Validation Error: At least one directory or file path is required",
		},
		{
			name: "restore with too many keys",
			run: func() error {
				_, err := store.Restore(ctx, []string{"build"}, "key", tooMany)
				return err
			},
			msg: "Key Validation Error: Keys are limited to a maximum of 10.",
		},
		{
			name: "save with comma",
			run: func() error {
				return store.Save(ctx, []string{"build"}, "a,b", domain.SaveOptions{})
			},
			msg: "Key Validation Error: a,b cannot contain commas.",
		},
		{
			name: "save with long key",
			run: func() error {
				return store.Save(ctx, []string{"build"}, strings.Repeat("k", domain.MaxKeyLength+1), domain.SaveOptions{})
			},
			msg: "cannot be larger than 512 characters.",
		},
		{
			name: "save without paths",
			run: func() error {
				return store.Save(ctx, nil, "key", domain.SaveOptions{})
			},
			msg: "Path Validation Error: At least one directory or file path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestStore_Save_NoFiles(t *testing.T) {
	f := newFixture(t)
	store := local.NewStore(f.cacheDir, f.src)

	err := store.Save(context.Background(), []string{"missing"}, "key", domain.SaveOptions{})
	require.ErrorIs(t, err, domain.ErrNoFilesToCache)
	assert.False(t, domain.IsValidationError(err))
	assert.NoFileExists(t, lockPath(f.cacheDir, "key"))

	// The failed save leaves no entry behind.
	matched, err := store.Restore(context.Background(), []string{"missing"}, "key", nil)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestStore_SaveRestore_MetacharacterDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	writeFile(t, f.src, "build/a[1]/uuid", "a1")

	saver := local.NewStore(f.cacheDir, f.src)
	require.NoError(t, saver.Save(ctx, []string{filepath.Join(f.src, "build", "a[1]")}, "a1", domain.SaveOptions{}))

	restorer := local.NewStore(f.cacheDir, f.dst)
	matched, err := restorer.Restore(ctx, []string{"."}, "a1", nil)
	require.NoError(t, err)
	assert.Equal(t, "a1", matched)
	assert.FileExists(t, filepath.Join(f.dst, "build", "a[1]", "uuid"))
}
