// Package archive packs workspace paths into zstd-compressed tar streams and unpacks them again.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
	fsadapter "go.trai.ch/carry/internal/adapters/fs"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Extension is the file extension of archives produced by Pack.
const Extension = ".tar.zst"

// Pack expands patterns against root and writes every matched file, directory and symlink,
// with the contents of matched directories, as a zstd-compressed tar stream to w.
// Entry names are slash-separated and relative to root. Patterns starting with "!" exclude
// matching entries and everything below them.
// It returns the number of entries written.
func Pack(ctx context.Context, root string, patterns []string, w io.Writer) (int, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
	}

	entries, err := collect(ctx, root, patterns)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, domain.ErrNoFilesToCache
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
	}
	tw := tar.NewWriter(enc)

	for _, path := range entries {
		if err := ctx.Err(); err != nil {
			_ = enc.Close()
			return 0, err
		}
		if err := writeEntry(tw, root, path); err != nil {
			_ = enc.Close()
			return 0, zerr.With(zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error()), "path", path)
		}
	}

	if err := tw.Close(); err != nil {
		_ = enc.Close()
		return 0, zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
	}
	if err := enc.Close(); err != nil {
		return 0, zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
	}
	return len(entries), nil
}

// collect resolves patterns to a sorted, de-duplicated list of absolute paths under root.
// A pattern naming an existing path is taken literally; anything else is globbed relative to root.
func collect(ctx context.Context, root string, patterns []string) ([]string, error) {
	var includes, excludes []string
	for _, pattern := range patterns {
		exclude := strings.HasPrefix(pattern, "!")
		pattern = strings.TrimPrefix(pattern, "!")

		abs := pattern
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, abs)
		}
		abs = filepath.Clean(abs)

		if !within(root, abs) {
			return nil, domain.NewValidationError(
				"Path Validation Error: " + pattern + " is outside the workspace " + root,
			)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrGlobFailed.Error()), "pattern", pattern)
		}

		if exclude {
			excludes = append(excludes, filepath.ToSlash(rel))
		} else {
			includes = append(includes, rel)
		}
	}

	walker := fsadapter.NewWalker()
	seen := make(map[string]struct{})
	var entries []string

	for _, rel := range includes {
		matches, err := expand(root, rel)
		if err != nil {
			return nil, err
		}

		for _, match := range matches {
			for path, err := range walker.Walk(match) {
				if err != nil {
					return nil, zerr.With(zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error()), "path", match)
				}
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if _, ok := seen[path]; ok || path == root || excluded(root, path, excludes) {
					continue
				}
				seen[path] = struct{}{}
				entries = append(entries, path)
			}
		}
	}

	slices.Sort(entries)
	return entries, nil
}

// expand returns the absolute paths rel names under root.
func expand(root, rel string) ([]string, error) {
	literal := filepath.Join(root, rel)
	if _, err := os.Lstat(literal); err == nil {
		return []string{literal}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(rel), doublestar.WithNoFollow())
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrGlobFailed.Error()), "pattern", rel)
	}
	for i, match := range matches {
		matches[i] = filepath.Join(root, filepath.FromSlash(match))
	}
	return matches, nil
}

// excluded reports whether entry, or one of its parents below root, matches an exclusion pattern.
// Exclusions are slash-separated and relative to root.
func excluded(root, entry string, excludes []string) bool {
	if len(excludes) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, entry)
	if err != nil {
		return false
	}
	slashed := filepath.ToSlash(rel)
	for _, exclude := range excludes {
		for p := slashed; p != "." && p != "/"; p = path.Dir(p) {
			if ok, _ := doublestar.Match(exclude, p); ok {
				return true
			}
		}
	}
	return false
}

func writeEntry(tw *tar.Writer, root, path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)
	if info.IsDir() {
		hdr.Name += "/"
	}
	// Ownership is not restored, keep the stream independent of the host.
	hdr.Uid, hdr.Gid, hdr.Uname, hdr.Gname = 0, 0, "", ""

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	//nolint:gosec // Path comes from walking the workspace
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	_, err = io.Copy(tw, f)
	return err
}

// Unpack extracts a stream produced by Pack into root, creating directories as needed
// and overwriting existing files. Entries that would land outside root are rejected.
func Unpack(ctx context.Context, root string, r io.Reader) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error())
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error())
	}
	defer dec.Close()

	tr := tar.NewReader(dec)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error())
		}

		target := filepath.Join(root, filepath.FromSlash(hdr.Name))
		if !within(root, target) || target == root {
			return zerr.With(domain.ErrArchiveEntryOutsideRoot, "entry", hdr.Name)
		}

		if err := extractEntry(tr, hdr, root, target); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error()), "entry", hdr.Name)
		}
	}
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, root, target string) error {
	mode := hdr.FileInfo().Mode()

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, domain.DirPerm); err != nil {
			return err
		}
		return os.Chmod(target, mode.Perm())
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
			return err
		}
		if err := removeIfLink(target); err != nil {
			return err
		}
		//nolint:gosec // Target is checked to stay inside root
		f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
		if err != nil {
			return err
		}
		//nolint:gosec // Archives are produced by Pack from the same workspace
		if _, err := io.Copy(f, tr); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		return os.Chmod(target, mode.Perm())
	case tar.TypeSymlink:
		link := hdr.Linkname
		resolved := link
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(target), resolved)
		}
		if !within(root, filepath.Clean(resolved)) {
			return zerr.With(domain.ErrArchiveEntryOutsideRoot, "link", link)
		}
		if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
			return err
		}
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return os.Symlink(link, target)
	default:
		return nil
	}
}

// removeIfLink deletes target when it is a symlink so a write never follows it.
func removeIfLink(target string) error {
	info, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return os.Remove(target)
	}
	return nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
