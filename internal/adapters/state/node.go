package state

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/carry/internal/adapters/config"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the state store Graft node.
const NodeID graft.ID = "adapter.state_store"

func init() {
	graft.Register(graft.Node[ports.StateStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (ports.StateStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			return New(cfg.State, cwd)
		},
	})
}

// New selects the state store for cfg. Relative directories resolve against cwd.
func New(cfg domain.StateConfig, cwd string) (ports.StateStore, error) {
	switch cfg.Kind {
	case domain.StateKindFile, "":
		dir := cfg.Dir
		if dir == "" {
			dir = domain.CarryDirName
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
		return NewFileStore(dir), nil
	case domain.StateKindActions:
		return NewActionsStore(nil, nil), nil
	default:
		return nil, zerr.With(domain.ErrUnknownStateKind, "kind", cfg.Kind)
	}
}
