package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/vigil/internal/adapters/control"
	"go.trai.ch/vigil/internal/adapters/fswatch"
	"go.trai.ch/vigil/internal/adapters/logger"
	"go.trai.ch/vigil/internal/core/ports"
)

// NodeID is the unique identifier for the watch registry Graft node.
const NodeID graft.ID = "engine.registry"

func init() {
	graft.Register(graft.Node[*Registry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fswatch.NodeID, control.WriterNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Registry, error) {
			factory, err := graft.Dep[ports.WatcherFactory](ctx)
			if err != nil {
				return nil, err
			}
			writer, err := graft.Dep[ports.BatchWriter](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRegistry(factory, writer, log), nil
		},
	})
}
