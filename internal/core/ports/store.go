package ports

import (
	"context"

	"go.trai.ch/carry/internal/core/domain"
)

// CacheStore is the external cache storage collaborator.
//
// Errors are classified by the caller: *domain.ValidationError aborts the routine,
// *domain.ReserveCacheError is informational, anything else is a transfer error.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Available returns nil when the backend can serve requests.
	Available(ctx context.Context) error

	// Restore looks up key, then each restore key in order, and extracts the first match
	// into the workspace. It returns the matched key, or "" when nothing matched.
	Restore(ctx context.Context, paths []string, key string, restoreKeys []string) (string, error)

	// Save archives paths and stores them under key.
	Save(ctx context.Context, paths []string, key string, opts domain.SaveOptions) error
}
