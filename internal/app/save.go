package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Save stores every marked directory under its marker key, then the manifest of those keys
// under the primary key restore ran with. It never fails: every error, including validation
// errors from the cache store, ends up as a warning.
func (a *App) Save(ctx context.Context, opts RunOptions) {
	if err := a.save(ctx, a.inputs(opts)); err != nil {
		a.logger.Warn(err.Error())
	}
}

func (a *App) save(ctx context.Context, in inputs) error {
	if !a.available(ctx) || !a.validEvent() {
		return nil
	}

	matchedKey, err := a.state.Read(domain.StateMatchedKey)
	if err != nil {
		return err
	}
	// Inputs may be re-evaluated between steps, so the key comes from state.
	primaryKey, err := a.state.Read(domain.StatePrimaryKey)
	if err != nil {
		return err
	}
	if primaryKey == "" {
		a.logger.Warn("Error retrieving key from state.")
		return nil
	}

	if domain.IsExactKeyMatch(primaryKey, matchedKey) {
		a.logger.Info("Cache hit occurred on the primary key " + primaryKey + ", not saving cache.")
		return nil
	}

	patterns, err := in.getArray(domain.InputPath, true)
	if err != nil {
		return err
	}
	opts := domain.SaveOptions{UploadChunkSize: in.getInt(domain.InputUploadChunkSize)}

	for _, pattern := range patterns {
		uuids, err := a.saveDirectories(ctx, pattern, opts)
		if err != nil {
			return err
		}
		// Each pattern rewrites the manifest, so only the last pattern's keys are kept.
		if err := a.writeManifest(uuids); err != nil {
			return err
		}
	}

	manifestPath := filepath.Join(a.workDir, domain.ManifestFileName)
	err = supervise(ctx, func(ctx context.Context) error {
		return a.store.Save(ctx, []string{manifestPath}, primaryKey, opts)
	})
	if err == nil {
		a.logger.Info("Cache saved with key: " + primaryKey)
		return nil
	}
	return a.report(err)
}

// saveDirectories saves each directory matching pattern under the key in its marker file
// and returns the keys of every attempted save.
func (a *App) saveDirectories(ctx context.Context, pattern string, opts domain.SaveOptions) (domain.Manifest, error) {
	if !strings.HasPrefix(pattern, "!") && !filepath.IsAbs(pattern) {
		pattern = filepath.Join(a.workDir, pattern)
	}

	uuids := domain.Manifest{}
	for dir, err := range a.globber.Glob(ctx, pattern) {
		if err != nil {
			return nil, err
		}

		uuid, err := readMarker(dir)
		if err != nil {
			a.logger.Warn(err.Error())
			continue
		}
		if uuid == "" {
			a.logger.Warn("UUID file not found for cache")
			continue
		}

		err = supervise(ctx, func(ctx context.Context) error {
			return a.store.Save(ctx, []string{dir}, uuid, opts)
		})
		if err := a.report(err); err != nil {
			return nil, err
		}
		uuids = append(uuids, uuid)
	}
	return uuids, nil
}

// report logs a failed save. Only validation errors are returned, to abort the routine.
func (a *App) report(err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsValidationError(err):
		return err
	case domain.IsReserveCacheError(err):
		a.logger.Info(err.Error())
	default:
		a.logger.Warn(err.Error())
	}
	return nil
}

// readMarker returns the trimmed content of dir's marker file, or "" when there is none.
func readMarker(dir string) (string, error) {
	path := filepath.Join(dir, domain.MarkerFileName)

	//nolint:gosec // Marker inside a directory matched by the path input
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrMarkerReadFailed.Error()), "path", path)
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *App) writeManifest(uuids domain.Manifest) error {
	data, err := uuids.Encode()
	if err != nil {
		return err
	}

	path := filepath.Join(a.workDir, domain.ManifestFileName)
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "path", path)
	}
	return nil
}
