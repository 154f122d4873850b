package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Restore restores the manifest stored under the primary key, then every directory it lists.
//
// It returns an error only for a missing key input, a run state write failure or a
// validation error from the cache store. Everything else is logged and absorbed.
func (a *App) Restore(ctx context.Context, opts RunOptions) error {
	if !a.available(ctx) {
		a.setCacheHit(false)
		return nil
	}
	if !a.validEvent() {
		return nil
	}

	in := a.inputs(opts)
	primaryKey, err := in.get(domain.InputKey, true)
	if err != nil {
		return err
	}
	// Saved before any cache operation so save can recover it even if restore fails.
	if err := a.state.Save(domain.StatePrimaryKey, primaryKey); err != nil {
		return err
	}

	restoreKeys, err := in.getArray(domain.InputRestoreKeys, false)
	if err != nil {
		return err
	}
	paths, err := in.getArray(domain.InputPath, true)
	if err != nil && !errors.Is(err, domain.ErrInputRequired) {
		return err
	}
	if len(paths) == 0 {
		// Entries carry their own workspace-relative paths.
		paths = []string{"."}
	}

	if err := a.restore(ctx, primaryKey, restoreKeys, paths); err != nil {
		if domain.IsValidationError(err) {
			return err
		}
		a.logger.Warn(err.Error())
		a.setCacheHit(false)
	}
	return nil
}

func (a *App) restore(ctx context.Context, primaryKey string, restoreKeys, paths []string) error {
	matchedKey, err := a.store.Restore(ctx, []string{domain.ManifestFileName}, primaryKey, nil)
	if err != nil {
		return err
	}
	if matchedKey == "" {
		a.logger.Info(notFoundMessage(primaryKey, restoreKeys))
		return nil
	}

	manifest, found, err := a.readManifest()
	if err != nil {
		return err
	}
	if !found {
		a.logger.Info("UUIDs File not found for cache")
		return nil
	}

	for _, uuid := range manifest {
		uuidKey, err := a.store.Restore(ctx, paths, uuid, restoreKeys)
		switch {
		case err != nil && domain.IsValidationError(err):
			return err
		case err != nil:
			a.logger.Warn(err.Error())
		case uuidKey == "":
			a.logger.Info(notFoundMessage(uuid, restoreKeys))
		default:
			a.logger.Info("Cache restored with key: " + uuidKey)
		}
	}

	if err := a.state.Save(domain.StateMatchedKey, matchedKey); err != nil {
		return err
	}
	a.setCacheHit(domain.IsExactKeyMatch(primaryKey, matchedKey))
	a.logger.Info("Cache restored from key: " + matchedKey)
	return nil
}

// readManifest loads the restored manifest from the working directory.
// A missing file is reported as not found rather than as an error.
func (a *App) readManifest() (domain.Manifest, bool, error) {
	path := filepath.Join(a.workDir, domain.ManifestFileName)

	//nolint:gosec // Fixed file name inside the working directory
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}

	manifest, err := domain.ParseManifest(data)
	if err != nil {
		return nil, false, zerr.With(err, "path", path)
	}
	return manifest, true, nil
}

func (a *App) setCacheHit(hit bool) {
	a.runner.SetOutput(domain.OutputCacheHit, strconv.FormatBool(hit))
}

func notFoundMessage(key string, restoreKeys []string) string {
	return "Cache not found for input keys: " + strings.Join(append([]string{key}, restoreKeys...), ", ")
}
