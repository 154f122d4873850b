// Package cache selects the cache store backend from configuration.
package cache

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/carry/internal/adapters/cache/local"
	"go.trai.ch/carry/internal/adapters/cache/s3"
	"go.trai.ch/carry/internal/adapters/config"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the cache store Graft node.
const NodeID graft.ID = "adapter.cache_store"

func init() {
	graft.Register(graft.Node[ports.CacheStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (ports.CacheStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			return New(cfg, cwd)
		},
	})
}

// New creates the configured backend. Archives are packed from and extracted into workDir.
func New(cfg *domain.Config, workDir string) (ports.CacheStore, error) {
	switch cfg.Backend {
	case domain.BackendLocal, "":
		return local.NewStore(cfg.Local.Dir, workDir), nil
	case domain.BackendS3:
		return s3.New(cfg.S3, workDir)
	default:
		return nil, zerr.With(domain.ErrUnknownBackend, "backend", cfg.Backend)
	}
}
