package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/spaghettifunk/posecreator/engine/assets"
	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine has shut down
	EngineStageShutdown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	assetManager *assets.AssetManager
	jobSystem    *systems.JobSystem
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64
	frameCount   uint64
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		assetManager: am,
		isRunning:    false,
		lastTime:     0,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	if err := core.LogSetLevel(config.LogLevel); err != nil {
		core.LogWarn("invalid log level '%s', keeping the default", config.LogLevel)
	}

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)

	// initialize subsystems
	if err := e.assetManager.Initialize(config.AssetDirectory); err != nil {
		return err
	}
	e.gameInstance.AssetManager = e.assetManager

	js, err := systems.NewJobSystem(config.JobWorkers, config.JobWorkers*4)
	if err != nil {
		return err
	}
	e.jobSystem = js
	e.gameInstance.Jobs = js

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized", config.Name)
	return nil
}

/**
 * @brief Runs the frame loop until the context is cancelled, the game fails
 * or EVENT_CODE_APPLICATION_QUIT is fired.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64 = 0
	if rate := e.gameInstance.ApplicationConfig.TargetFrameRate; rate > 0 {
		targetFrameSeconds = 1.0 / float64(rate)
	}

	for e.isRunning {
		select {
		case <-ctx.Done():
			core.LogInfo("context cancelled, shutting down.")
			e.isRunning = false
			continue
		default:
		}

		// Update clock and get delta time.
		e.clock.Update()
		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		frameStart := time.Now()

		// Deliver finished jobs before the game looks at its state.
		e.jobSystem.Update()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				e.isRunning = false
				return err
			}
		}

		// Figure out how long the frame took and, if below the target,
		// give the rest back to the OS.
		frameElapsed := time.Since(frameStart).Seconds()
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
		e.metrics.Update(frameElapsed)
		e.frameCount++
		if e.frameCount%600 == 0 {
			fps, ms := e.metrics.Frame()
			core.LogDebug("frame %d: %.0f fps, %.3f ms", e.frameCount, fps, ms)
		}

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		// As a safety, input is the last thing to be updated before
		// this frame ends.
		if err := core.InputUpdate(delta); err != nil {
			return err
		}

		// Update last time
		e.lastTime = currentTime
	}
	return nil
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false
	e.clock.Stop()

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	// Pending writes still need the asset manager.
	if e.jobSystem != nil {
		if err := e.jobSystem.Shutdown(); err != nil {
			return err
		}
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageShutdown
	return nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// FrameCount returns the number of frames run so far.
func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		{
			core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
			e.isRunning = false
		}
	}
}
