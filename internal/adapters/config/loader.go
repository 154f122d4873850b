// Package config provides the configuration loader for carry.
package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CARRY_"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using an optional YAML file and the environment.
type Loader struct {
	Logger ports.Logger

	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load resolves the configuration for cwd.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	var file File
	root := cwd

	configPath := findConfiguration(cwd)
	if configPath != "" {
		if err := readAndUnmarshalYAML(configPath, &file); err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		root = filepath.Dir(configPath)

		if file.S3.SecretKey != "" {
			l.Logger.Warn("s3.secretKey is set in " + configPath + "; prefer " + EnvPrefix + "S3_SECRET_KEY")
		}
	}

	if err := env.ParseWithOptions(&file, env.Options{
		Prefix:      EnvPrefix,
		Environment: l.Environment,
	}); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigEnvFailed.Error())
	}

	return resolve(file, root)
}

// findConfiguration walks up from cwd and returns the first carry.yaml, or "".
func findConfiguration(cwd string) string {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

func resolve(file File, root string) (*domain.Config, error) {
	cfg := &domain.Config{
		Root:    root,
		Backend: file.Backend,
		Local:   domain.LocalConfig{Dir: file.Local.Dir},
		S3: domain.S3Config{
			Endpoint:  file.S3.Endpoint,
			Bucket:    file.S3.Bucket,
			Prefix:    file.S3.Prefix,
			Region:    file.S3.Region,
			AccessKey: file.S3.AccessKey,
			SecretKey: file.S3.SecretKey,
			UseSSL:    file.S3.UseSSL,
		},
		State: domain.StateConfig{Kind: file.State.Kind, Dir: file.State.Dir},
	}

	if cfg.Backend == "" {
		cfg.Backend = domain.BackendLocal
	}
	if cfg.Backend != domain.BackendLocal && cfg.Backend != domain.BackendS3 {
		return nil, zerr.With(domain.ErrUnknownBackend, "backend", cfg.Backend)
	}

	if cfg.Local.Dir == "" {
		cfg.Local.Dir = defaultCacheDir()
	} else if !filepath.IsAbs(cfg.Local.Dir) {
		cfg.Local.Dir = filepath.Join(root, cfg.Local.Dir)
	}

	if cfg.State.Kind == "" {
		cfg.State.Kind = domain.StateKindFile
	}
	if cfg.State.Kind != domain.StateKindFile && cfg.State.Kind != domain.StateKindActions {
		return nil, zerr.With(domain.ErrUnknownStateKind, "kind", cfg.State.Kind)
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = domain.CarryDirName
	}

	return cfg, nil
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, domain.CacheDirName)
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath comes from findConfiguration
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
