package registry

import (
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
)

// Translate maps a raw capability kind to its public event kind.
// Directory-level and unknown kinds have no public equivalent and are
// dropped; the second return is false for those.
func Translate(kind ports.RawKind) (domain.EventKind, bool) {
	switch kind {
	case ports.RawAdded:
		return domain.KindCreate, true
	case ports.RawChanged:
		return domain.KindChange, true
	case ports.RawRemoved:
		return domain.KindDelete, true
	case ports.RawAddedDir, ports.RawRemovedDir, ports.RawUnknown:
		return "", false
	default:
		return "", false
	}
}
