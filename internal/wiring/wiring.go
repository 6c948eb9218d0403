// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/vigil/internal/adapters/config"
	_ "go.trai.ch/vigil/internal/adapters/control"
	_ "go.trai.ch/vigil/internal/adapters/fswatch"
	_ "go.trai.ch/vigil/internal/adapters/logger"
	_ "go.trai.ch/vigil/internal/adapters/proc"
	// Register app and engine nodes.
	_ "go.trai.ch/vigil/internal/app"
	_ "go.trai.ch/vigil/internal/engine/registry"
)
