package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spaghettifunk/extruder/engine/assets"
	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/geo"
	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
	"github.com/spaghettifunk/extruder/engine/systems"
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
	// Engine released everything it held
	EngineStageShutdown
)

// Editors tend to write a file in several steps; changes closer together
// than this trigger a single pass.
const watchDebounce = 200 * time.Millisecond

var ErrNotInitialized = errors.New("engine is not initialized")

type Engine struct {
	currentStage Stage
	app          *Application
	assetManager *assets.AssetManager
	jobSystem    *systems.JobSystem
	clock        *core.Clock
	metrics      *core.MetricsState
	report       io.Writer

	runMutex sync.Mutex
	quitOnce sync.Once
	quit     chan struct{}
	changed  chan string
}

func New(app *Application) (*Engine, error) {
	if app == nil {
		return nil, fmt.Errorf("engine requires an application")
	}
	if app.ApplicationConfig == nil {
		app.ApplicationConfig = DefaultApplicationConfig()
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		app:          app,
		assetManager: am,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		report:       os.Stdout,
		quit:         make(chan struct{}),
		changed:      make(chan string, 16),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.app.ApplicationConfig

	if err := core.SetLogLevel(config.LogLevel); err != nil {
		core.LogWarn("unknown log level %q, keeping the default", config.LogLevel)
	}

	// initialize events
	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_ASSETS_CHANGED, e, e.onEvent)

	// initialize subsystems
	if err := e.assetManager.Initialize(); err != nil {
		return err
	}

	js, err := systems.NewJobSystem(config.Jobs.Workers, config.Jobs.QueueSize)
	if err != nil {
		return err
	}
	e.jobSystem = js

	if e.app.FnInitialize != nil {
		if err := e.app.FnInitialize(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized with %d workers", config.Name, js.Workers())
	return nil
}

// Run executes one extrusion pass. In watch mode it then keeps running a
// pass whenever a watched input changes, until Shutdown is called or
// EVENT_CODE_APPLICATION_QUIT fires.
func (e *Engine) Run() error {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()

	if e.currentStage != EngineStageInitialized {
		return ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	if _, _, err := e.RunPass(); err != nil {
		return err
	}

	config := e.app.ApplicationConfig
	if !config.Watch {
		return nil
	}
	for _, path := range []string{config.Input.Styles, config.Input.Features} {
		if path == "" {
			continue
		}
		if err := e.assetManager.Watch(path); err != nil {
			return err
		}
		core.LogInfo("watching %s", path)
	}

	for {
		select {
		case <-e.quit:
			return nil
		case path := <-e.changed:
			deadline := time.After(watchDebounce)
		drain:
			for {
				select {
				case <-e.changed:
				case <-deadline:
					break drain
				case <-e.quit:
					return nil
				}
			}
			core.LogInfo("%s changed, running again", path)
			if _, _, err := e.RunPass(); err != nil {
				core.LogError(err.Error())
			}
		}
	}
}

// RunPass loads the inputs, extrudes them on the job system and writes the
// output.
func (e *Engine) RunPass() (*metadata.Group, core.PassStats, error) {
	if e.jobSystem == nil {
		return nil, core.PassStats{}, ErrNotInitialized
	}
	config := e.app.ApplicationConfig
	e.clock.Start()

	sheet, err := e.loadStyles()
	if err != nil {
		return nil, core.PassStats{}, err
	}
	s, err := selectStyle(sheet, config.Input.Style)
	if err != nil {
		return nil, core.PassStats{}, err
	}
	feats, srs, err := e.loadFeatures()
	if err != nil {
		return nil, core.PassStats{}, err
	}

	extent := geo.NewExtent(srs)
	for _, f := range feats {
		if f == nil || f.Geometry == nil || f.Geometry.TotalPointCount() == 0 {
			continue
		}
		b := f.Geometry.Bounds()
		extent.Expand(b.Min[0], b.Min[1])
		extent.Expand(b.Max[0], b.Max[1])
	}

	cx := &systems.FilterContext{
		Extent:      extent,
		Geocentric:  config.Filter.Geocentric,
		Styles:      sheet,
		Diagnostics: core.NewDiagnostics(config.Diagnostics),
		Metrics:     core.NewMetrics(),
	}
	filter := systems.NewExtrudeGeometryFilter(s, config.FilterOptions()...)

	group, err := systems.ExtrudeBatches(e.jobSystem, filter, feats, config.Jobs.BatchSize, cx)
	if err != nil {
		return nil, core.PassStats{}, err
	}
	group.Name = config.Name

	if config.Output.Path != "" {
		if err := assets.SaveOBJ(config.Output.Path, group); err != nil {
			return nil, core.PassStats{}, fmt.Errorf("write %s: %w", config.Output.Path, err)
		}
	}

	e.clock.Stop()
	_, stats := cx.Metrics.Snapshot()
	stats.Elapsed = e.clock.Elapsed()
	e.metrics.Record(stats)

	fmt.Fprintln(e.report, RenderPassReport(config.Name, stats, cx.Diagnostics, config.Output.Path))

	ctx := core.EventContext{}
	ctx.Data.I64[0] = int64(stats.Features)
	ctx.Data.I64[1] = int64(stats.Triangles)
	ctx.Data.F64[0] = float64(stats.Elapsed.Microseconds()) / 1000.0
	ctx.Data.F64[1] = e.metrics.PassTime()
	core.EventFire(core.EVENT_CODE_PASS_COMPLETED, e, ctx)

	if e.app.FnOnPass != nil {
		if err := e.app.FnOnPass(group, stats); err != nil {
			return nil, stats, err
		}
	}
	return group, stats, nil
}

func (e *Engine) loadStyles() (*style.StyleSheet, error) {
	if e.app.FnLoadStyles != nil {
		return e.app.FnLoadStyles()
	}
	path := e.app.ApplicationConfig.Input.Styles
	if path == "" {
		return style.NewStyleSheet(), nil
	}
	res, err := e.assetManager.LoadAsset(path, metadata.ResourceTypeStyleSheet, nil)
	if err != nil {
		return nil, err
	}
	return res.Data.(*style.StyleSheet), nil
}

func (e *Engine) loadFeatures() ([]*features.Feature, geo.SpatialReference, error) {
	if e.app.FnLoadFeatures != nil {
		return e.app.FnLoadFeatures()
	}
	input := e.app.ApplicationConfig.Input
	srs, err := geo.ParseSRS(input.SRS)
	if err != nil {
		return nil, nil, err
	}
	if input.Features == "" {
		return nil, nil, fmt.Errorf("no features configured: set [input] features")
	}
	res, err := e.assetManager.LoadAsset(input.Features, metadata.ResourceTypeFeatures, &metadata.FeatureResourceParams{
		IDAttribute: input.IDAttribute,
	})
	if err != nil {
		return nil, nil, err
	}
	return res.Data.([]*features.Feature), srs, nil
}

func selectStyle(sheet *style.StyleSheet, name string) (style.Style, error) {
	if name != "" {
		s, ok := sheet.Style(name)
		if !ok {
			return style.Style{}, fmt.Errorf("style %q not found", name)
		}
		return *s, nil
	}
	names := sheet.StyleNames()
	switch len(names) {
	case 0:
		return style.Style{}, nil
	case 1:
		s, _ := sheet.Style(names[0])
		return *s, nil
	}
	return style.Style{}, fmt.Errorf("style sheet holds %d styles, set [input] style", len(names))
}

func (e *Engine) Shutdown() error {
	e.quitOnce.Do(func() { close(e.quit) })

	// Wait for a running pass to finish.
	e.runMutex.Lock()
	defer e.runMutex.Unlock()

	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	core.EventUnregister(core.EVENT_CODE_ASSETS_CHANGED, e)

	var errs []error
	if e.jobSystem != nil {
		errs = append(errs, e.jobSystem.Shutdown())
	}
	errs = append(errs, e.assetManager.Shutdown())
	if e.app.FnShutdown != nil {
		errs = append(errs, e.app.FnShutdown())
	}

	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.quitOnce.Do(func() { close(e.quit) })
		return true
	case core.EVENT_CODE_ASSETS_CHANGED:
		select {
		case e.changed <- data.Data.C[0]:
		default:
		}
	}
	return false
}
