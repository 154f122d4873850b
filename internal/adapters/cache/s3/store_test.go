package s3_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/carry/internal/adapters/cache/s3"
	"go.trai.ch/carry/internal/core/domain"
)

func TestPartSize(t *testing.T) {
	tests := []struct {
		name  string
		chunk int64
		want  uint64
	}{
		{name: "unset uses default", chunk: 0, want: uint64(domain.DefaultUploadChunkSize)},
		{name: "below minimum is raised", chunk: 1024, want: uint64(domain.MinS3PartSize)},
		{name: "explicit", chunk: 64 << 20, want: 64 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s3.PartSize(domain.SaveOptions{UploadChunkSize: tt.chunk}))
		})
	}
}

func TestNew(t *testing.T) {
	store, err := s3.New(domain.S3Config{
		Endpoint:  "localhost:9000",
		Bucket:    "ci-cache",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}, t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestStore_ValidatesBeforeNetwork(t *testing.T) {
	store, err := s3.New(domain.S3Config{Endpoint: "localhost:1", Bucket: "b"}, t.TempDir())
	require.NoError(t, err)

	_, err = store.Restore(context.Background(), nil, "key", nil)
	assert.True(t, domain.IsValidationError(err))

	err = store.Save(context.Background(), []string{"build"}, "a,b", domain.SaveOptions{})
	assert.True(t, domain.IsValidationError(err))
}
