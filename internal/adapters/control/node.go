package control

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/vigil/internal/core/ports"
)

// WriterNodeID is the unique identifier for the output writer Graft node.
const WriterNodeID graft.ID = "adapter.control_writer"

func init() {
	graft.Register(graft.Node[ports.BatchWriter]{
		ID:        WriterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.BatchWriter, error) {
			return NewWriter(os.Stdout), nil
		},
	})
}
