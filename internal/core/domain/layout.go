package domain

import (
	"path/filepath"
	"time"
)

const (
	// CarryDirName is the name of the internal workspace directory.
	CarryDirName = ".carry"

	// StateFileName is the name of the file-backed run state.
	StateFileName = "state.json"

	// ConfigFileName is the name of the optional backend configuration file.
	ConfigFileName = "carry.yaml"

	// CacheDirName is the directory under the user cache dir used by the local backend.
	CacheDirName = "carry"

	// ManifestFileName is the manifest written by save and read by restore.
	ManifestFileName = "uuids.json"

	// MarkerFileName is the per-directory file naming the directory's cache key.
	MarkerFileName = "uuid"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// Run state names shared by restore and save.
const (
	// StatePrimaryKey holds the primary key restore was invoked with.
	StatePrimaryKey = "CACHE_KEY"

	// StateMatchedKey holds the manifest key restore actually matched.
	StateMatchedKey = "CACHE_RESULT"
)

// Declared inputs and outputs.
const (
	InputKey             = "key"
	InputPath            = "path"
	InputRestoreKeys     = "restore-keys"
	InputUploadChunkSize = "upload-chunk-size"

	OutputCacheHit = "cache-hit"
)

// Environment variables consulted for event validation.
const (
	EnvEventName = "GITHUB_EVENT_NAME"
	EnvRef       = "GITHUB_REF"
)

// Store tuning.
const (
	// DefaultUploadChunkSize is used when upload-chunk-size is unset.
	DefaultUploadChunkSize int64 = 32 << 20

	// MinS3PartSize is the smallest multipart part S3 accepts.
	MinS3PartSize int64 = 5 << 20

	// LockStaleAfter is how long a reservation lock may live before it is considered abandoned.
	LockStaleAfter = 10 * time.Minute
)

// DefaultStatePath returns the default location of the file-backed run state.
// It joins .carry and state.json.
func DefaultStatePath() string {
	return filepath.Join(CarryDirName, StateFileName)
}
