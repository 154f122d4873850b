package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrInputRequired is returned when a required input is missing.
	// Call sites append the input name: "Input required and not supplied: key".
	ErrInputRequired = zerr.New("Input required and not supplied")

	// ErrStateWriteFailed is returned when a run state value cannot be persisted.
	ErrStateWriteFailed = zerr.New("failed to write run state")

	// ErrStateFileUnset is returned when the actions state store runs outside a step with GITHUB_STATE.
	ErrStateFileUnset = zerr.New("GITHUB_STATE is not set")

	// ErrStateReadFailed is returned when the run state cannot be read.
	ErrStateReadFailed = zerr.New("failed to read run state")

	// ErrStateUnmarshalFailed is returned when the run state file cannot be decoded.
	ErrStateUnmarshalFailed = zerr.New("failed to unmarshal run state")

	// ErrManifestReadFailed is returned when the manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestParseFailed is returned when the manifest is not a JSON array of strings.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrManifestWriteFailed is returned when the manifest file cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrMarkerReadFailed is returned when a uuid marker file exists but cannot be read.
	ErrMarkerReadFailed = zerr.New("failed to read uuid marker")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigEnvFailed is returned when environment overrides cannot be applied.
	ErrConfigEnvFailed = zerr.New("failed to apply environment configuration")

	// ErrUnknownBackend is returned when the configured cache backend is not supported.
	ErrUnknownBackend = zerr.New("unknown cache backend, expected 'local' or 's3'")

	// ErrUnknownStateKind is returned when the configured state store is not supported.
	ErrUnknownStateKind = zerr.New("unknown state store, expected 'file' or 'actions'")

	// ErrCacheUnavailable is returned when the cache backend cannot be reached.
	ErrCacheUnavailable = zerr.New("cache service is unavailable")

	// ErrCacheDirCreateFailed is returned when the local cache directory cannot be created.
	ErrCacheDirCreateFailed = zerr.New("failed to create cache directory")

	// ErrArchiveCreateFailed is returned when packing paths into an archive fails.
	ErrArchiveCreateFailed = zerr.New("failed to create cache archive")

	// ErrArchiveExtractFailed is returned when unpacking an archive fails.
	ErrArchiveExtractFailed = zerr.New("failed to extract cache archive")

	// ErrArchiveEntryOutsideRoot is returned when an archive entry would be written outside the workspace.
	ErrArchiveEntryOutsideRoot = zerr.New("archive entry is outside the workspace")

	// ErrNoFilesToCache is returned when the paths of a save resolve to nothing.
	ErrNoFilesToCache = zerr.New(
		"Path Validation Error: Path(s) specified in the action for caching do(es) not exist, " +
			"hence no cache is being saved.",
	)

	// ErrEntryUploadFailed is returned when an entry cannot be written to the backend.
	ErrEntryUploadFailed = zerr.New("failed to upload cache entry")

	// ErrEntryDownloadFailed is returned when an entry cannot be read from the backend.
	ErrEntryDownloadFailed = zerr.New("failed to download cache entry")

	// ErrEntryLookupFailed is returned when the backend cannot be queried for a key.
	ErrEntryLookupFailed = zerr.New("failed to look up cache entry")

	// ErrGlobFailed is returned when a path pattern cannot be expanded.
	ErrGlobFailed = zerr.New("failed to expand path pattern")

	// ErrSavePanicked is returned when a cache save panics instead of returning.
	ErrSavePanicked = zerr.New("cache save panicked")
)

// ValidationError reports a structurally invalid key or path set given to the cache store.
// It is the only store error class that aborts a routine.
type ValidationError struct {
	Msg string
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ReserveCacheError reports that an entry for the key already exists,
// usually because a concurrent job saved it first.
type ReserveCacheError struct {
	Key string
}

// NewReserveCacheError creates a ReserveCacheError for key.
func NewReserveCacheError(key string) *ReserveCacheError {
	return &ReserveCacheError{Key: key}
}

func (e *ReserveCacheError) Error() string {
	return "Unable to reserve cache with key " + e.Key + ", another job may be creating this cache."
}

// IsValidationError reports whether err carries a ValidationError anywhere in its chain.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsReserveCacheError reports whether err carries a ReserveCacheError anywhere in its chain.
func IsReserveCacheError(err error) bool {
	var target *ReserveCacheError
	return errors.As(err, &target)
}
