package actions

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/carry/internal/core/ports"
)

// NodeID is the unique identifier for the runner Graft node.
const NodeID graft.ID = "adapter.runner"

func init() {
	graft.Register(graft.Node[ports.Runner]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Runner, error) {
			return NewRunner(nil, nil), nil
		},
	})
}
