package proc

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/vigil/internal/core/ports"
)

// NodeID is the unique identifier for the process prober Graft node.
const NodeID graft.ID = "adapter.proc"

func init() {
	graft.Register(graft.Node[ports.ProcessProber]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ProcessProber, error) {
			return NewProber(), nil
		},
	})
}
