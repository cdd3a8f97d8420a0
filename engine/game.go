package engine

import (
	"github.com/spaghettifunk/posecreator/engine/assets"
	"github.com/spaghettifunk/posecreator/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize is called.
	AssetManager *assets.AssetManager
	// Worker pool for work that must not stall the frame loop. Set by the
	// engine before FnInitialize is called.
	Jobs         *systems.JobSystem
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Shutdown func() error
