// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/carry/internal/adapters/actions"
	_ "go.trai.ch/carry/internal/adapters/cache"
	_ "go.trai.ch/carry/internal/adapters/config"
	_ "go.trai.ch/carry/internal/adapters/fs"
	_ "go.trai.ch/carry/internal/adapters/logger"
	_ "go.trai.ch/carry/internal/adapters/state"
	// Register app nodes.
	_ "go.trai.ch/carry/internal/app"
)
