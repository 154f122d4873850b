package domain

// Backend names.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// State store kinds.
const (
	StateKindFile    = "file"
	StateKindActions = "actions"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Root is the directory carry.yaml was found in, or the working directory.
	Root    string
	Backend string
	Local   LocalConfig
	S3      S3Config
	State   StateConfig
}

// LocalConfig configures the filesystem cache backend.
type LocalConfig struct {
	Dir string
}

// S3Config configures the S3-compatible cache backend.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// StateConfig configures where run state is kept between restore and save.
type StateConfig struct {
	Kind string
	Dir  string
}

// SaveOptions tunes a single cache save.
type SaveOptions struct {
	// UploadChunkSize is the transfer chunk size in bytes. Zero selects the backend default.
	UploadChunkSize int64
}
