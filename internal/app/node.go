package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/carry/internal/adapters/actions" //nolint:depguard // Wired in app layer
	"go.trai.ch/carry/internal/adapters/cache"   //nolint:depguard // Wired in app layer
	"go.trai.ch/carry/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/carry/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/carry/internal/adapters/state"   //nolint:depguard // Wired in app layer
	"go.trai.ch/carry/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
	// SetLogFormat switches the logger's record format. Nil when the logger cannot switch.
	SetLogFormat func(name string) error
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			actions.NodeID,
			state.NodeID,
			cache.NodeID,
			fs.GlobberNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[ports.Runner](ctx)
	if err != nil {
		return nil, err
	}

	stateStore, err := graft.Dep[ports.StateStore](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.CacheStore](ctx)
	if err != nil {
		return nil, err
	}

	globber, err := graft.Dep[ports.Globber](ctx)
	if err != nil {
		return nil, err
	}

	return New(log, runner, stateStore, store, globber), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	components := &Components{
		App:    a,
		Logger: log,
	}
	if f, ok := log.(interface{ SetFormat(name string) error }); ok {
		components.SetLogFormat = f.SetFormat
	}
	return components, nil
}
