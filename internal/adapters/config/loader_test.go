package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/carry/internal/adapters/config"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func newLoader(t *testing.T, environment map[string]string) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	loader := config.NewLoader(mockLogger)
	if environment == nil {
		environment = map[string]string{}
	}
	loader.Environment = environment
	return loader, mockLogger
}

func TestLoader_Defaults(t *testing.T) {
	loader, _ := newLoader(t, nil)
	cwd := t.TempDir()

	cfg, err := loader.Load(cwd)
	require.NoError(t, err)

	assert.Equal(t, cwd, cfg.Root)
	assert.Equal(t, domain.BackendLocal, cfg.Backend)
	assert.True(t, filepath.IsAbs(cfg.Local.Dir))
	assert.Equal(t, domain.CacheDirName, filepath.Base(cfg.Local.Dir))
	assert.Equal(t, domain.StateKindFile, cfg.State.Kind)
	assert.Equal(t, domain.CarryDirName, cfg.State.Dir)
}

func TestLoader_FileDiscoveredFromSubdirectory(t *testing.T) {
	loader, _ := newLoader(t, nil)

	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
backend: s3
local:
  dir: cache
s3:
  endpoint: minio:9000
  bucket: ci-cache
  prefix: carry/
state:
  kind: actions
`)
	sub := filepath.Join(root, "packages", "web")
	require.NoError(t, os.MkdirAll(sub, domain.DirPerm))

	cfg, err := loader.Load(sub)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, domain.BackendS3, cfg.Backend)
	assert.Equal(t, filepath.Join(root, "cache"), cfg.Local.Dir)
	assert.Equal(t, "minio:9000", cfg.S3.Endpoint)
	assert.Equal(t, "ci-cache", cfg.S3.Bucket)
	assert.Equal(t, "carry/", cfg.S3.Prefix)
	assert.Equal(t, domain.StateKindActions, cfg.State.Kind)
}

func TestLoader_EnvironmentOverridesFile(t *testing.T) {
	loader, _ := newLoader(t, map[string]string{
		"CARRY_BACKEND":       "s3",
		"CARRY_S3_BUCKET":     "from-env",
		"CARRY_S3_ACCESS_KEY": "AKIA",
		"CARRY_S3_USE_SSL":    "true",
		"CARRY_LOCAL_DIR":     "/srv/cache",
	})

	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
backend: local
s3:
  bucket: from-file
  endpoint: minio:9000
`)

	cfg, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, domain.BackendS3, cfg.Backend)
	assert.Equal(t, "from-env", cfg.S3.Bucket)
	assert.Equal(t, "minio:9000", cfg.S3.Endpoint)
	assert.Equal(t, "AKIA", cfg.S3.AccessKey)
	assert.True(t, cfg.S3.UseSSL)
	assert.Equal(t, "/srv/cache", cfg.Local.Dir)
}

func TestLoader_WarnsOnSecretInFile(t *testing.T) {
	loader, mockLogger := newLoader(t, nil)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1)

	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
backend: s3
s3:
  secretKey: hunter2
`)

	cfg, err := loader.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.S3.SecretKey)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		environment map[string]string
		errContains string
	}{
		{
			name:        "invalid yaml",
			content:     "backend: [",
			errContains: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:        "unknown backend",
			content:     "backend: gcs",
			errContains: "unknown cache backend",
		},
		{
			name:        "unknown state kind",
			content:     "state:\n  kind: redis",
			errContains: "unknown state store",
		},
		{
			name:        "bad env bool",
			content:     "backend: s3",
			environment: map[string]string{"CARRY_S3_USE_SSL": "maybe"},
			errContains: domain.ErrConfigEnvFailed.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t, tt.environment)
			root := t.TempDir()
			createFile(t, root, domain.ConfigFileName, tt.content)

			_, err := loader.Load(root)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}
