package archive_test

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/carry/internal/adapters/cache/archive"
	"go.trai.ch/carry/internal/core/domain"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func readFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func entryNames(t *testing.T, data []byte) []string {
	t.Helper()
	dec, err := zstd.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer dec.Close()

	var names []string
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	return names
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "build/abc123/uuid", "abc123")
	writeFile(t, src, "build/abc123/out/app.bin", "binary")
	writeFile(t, src, "build/def456/uuid", "def456")
	writeFile(t, src, "README.md", "not cached")

	var buf bytes.Buffer
	n, err := archive.Pack(context.Background(), src, []string{"build/abc123"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Equal(t, []string{
		"build/abc123/",
		"build/abc123/out/",
		"build/abc123/out/app.bin",
		"build/abc123/uuid",
	}, entryNames(t, buf.Bytes()))

	dst := t.TempDir()
	require.NoError(t, archive.Unpack(context.Background(), dst, bytes.NewReader(buf.Bytes())))

	assert.Equal(t, "abc123", readFile(t, dst, "build/abc123/uuid"))
	assert.Equal(t, "binary", readFile(t, dst, "build/abc123/out/app.bin"))
	assert.NoFileExists(t, filepath.Join(dst, "build", "def456", "uuid"))
	assert.NoFileExists(t, filepath.Join(dst, "README.md"))
}

func TestPack_Patterns(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a/keep.txt", "1")
	writeFile(t, src, "a/skip.log", "2")
	writeFile(t, src, "b/nested/keep.txt", "3")

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "double star files",
			patterns: []string{"**/*.txt"},
			want:     []string{"a/keep.txt", "b/nested/keep.txt"},
		},
		{
			name:     "exclusion",
			patterns: []string{"a", "!a/*.log"},
			want:     []string{"a/", "a/keep.txt"},
		},
		{
			name:     "absolute path inside workspace",
			patterns: []string{filepath.Join(src, "b")},
			want:     []string{"b/", "b/nested/", "b/nested/keep.txt"},
		},
		{
			name:     "overlapping patterns are written once",
			patterns: []string{"a/keep.txt", "a/*.txt"},
			want:     []string{"a/keep.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := archive.Pack(context.Background(), src, tt.patterns, &buf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entryNames(t, buf.Bytes()))
		})
	}
}

func TestPack_MetacharacterNames(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		patterns func(root string) []string
		want     []string
	}{
		{
			name: "literal directory with brackets",
			root: "ws",
			patterns: func(root string) []string {
				return []string{filepath.Join(root, "build", "a[1]")}
			},
			want: []string{"build/a[1]/", "build/a[1]/uuid"},
		},
		{
			name: "literal directory with braces and star",
			root: "ws",
			patterns: func(string) []string {
				return []string{"build/{b}*"}
			},
			want: []string{"build/{b}*/", "build/{b}*/uuid"},
		},
		{
			name: "glob under a workspace with brackets",
			root: "ws[1]",
			patterns: func(string) []string {
				return []string{"build/*/uuid", "!build/?b?*"}
			},
			want: []string{"build/a[1]/uuid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), tt.root)
			writeFile(t, root, "build/a[1]/uuid", "a1")
			writeFile(t, root, "build/{b}*/uuid", "b")

			var buf bytes.Buffer
			_, err := archive.Pack(context.Background(), root, tt.patterns(root), &buf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entryNames(t, buf.Bytes()))
		})
	}
}

func TestPack_NoFiles(t *testing.T) {
	var buf bytes.Buffer
	_, err := archive.Pack(context.Background(), t.TempDir(), []string{"missing/*"}, &buf)
	require.ErrorIs(t, err, domain.ErrNoFilesToCache)
	assert.False(t, domain.IsValidationError(err))
}

func TestPack_OutsideWorkspace(t *testing.T) {
	var buf bytes.Buffer
	_, err := archive.Pack(context.Background(), t.TempDir(), []string{"../elsewhere"}, &buf)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.ErrorContains(t, err, "Path Validation Error")
}

func TestPackUnpack_Symlink(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "dir/target.txt", "target")
	require.NoError(t, os.Symlink("target.txt", filepath.Join(src, "dir", "link.txt")))

	var buf bytes.Buffer
	_, err := archive.Pack(context.Background(), src, []string{"dir"}, &buf)
	require.NoError(t, err)

	dst := t.TempDir()
	require.NoError(t, archive.Unpack(context.Background(), dst, &buf))

	link, err := os.Readlink(filepath.Join(dst, "dir", "link.txt"))
	require.NoError(t, err)
	assert.Equal(t, "target.txt", link)
	assert.Equal(t, "target", readFile(t, dst, "dir/link.txt"))
}

func TestUnpack_Overwrites(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "out/file.txt", "new")

	var buf bytes.Buffer
	_, err := archive.Pack(context.Background(), src, []string{"out"}, &buf)
	require.NoError(t, err)

	dst := t.TempDir()
	writeFile(t, dst, "out/file.txt", "old content that is longer")
	require.NoError(t, archive.Unpack(context.Background(), dst, &buf))
	assert.Equal(t, "new", readFile(t, dst, "out/file.txt"))
}

func TestUnpack_RejectsEscapingEntries(t *testing.T) {
	tests := []struct {
		name string
		hdr  *tar.Header
	}{
		{
			name: "parent traversal",
			hdr:  &tar.Header{Name: "../evil.txt", Typeflag: tar.TypeReg, Mode: 0o644},
		},
		{
			name: "symlink out of root",
			hdr:  &tar.Header{Name: "link", Typeflag: tar.TypeSymlink, Linkname: "../../etc/passwd", Mode: 0o777},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := zstd.NewWriter(&buf)
			require.NoError(t, err)
			tw := tar.NewWriter(enc)
			require.NoError(t, tw.WriteHeader(tt.hdr))
			require.NoError(t, tw.Close())
			require.NoError(t, enc.Close())

			err = archive.Unpack(context.Background(), t.TempDir(), &buf)
			require.ErrorContains(t, err, domain.ErrArchiveEntryOutsideRoot.Error())
		})
	}
}

func TestUnpack_Corrupt(t *testing.T) {
	err := archive.Unpack(context.Background(), t.TempDir(), bytes.NewReader([]byte("not an archive")))
	assert.ErrorContains(t, err, domain.ErrArchiveExtractFailed.Error())
}
