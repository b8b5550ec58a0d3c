package engine

import (
	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/geo"
	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
)

// Application plugs a program into the engine. Every hook is optional:
// without FnLoadFeatures and FnLoadStyles the engine reads the files named
// in the [input] table.
type Application struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnLoadFeatures    LoadFeatures
	FnLoadStyles      LoadStyles
	FnOnPass          OnPass
	FnShutdown        Shutdown
}

func NewApplication(config *ApplicationConfig) *Application {
	if config == nil {
		config = DefaultApplicationConfig()
	}
	return &Application{ApplicationConfig: config}
}

type Initialize func() error
type LoadFeatures func() ([]*features.Feature, geo.SpatialReference, error)
type LoadStyles func() (*style.StyleSheet, error)
type OnPass func(result *metadata.Group, stats core.PassStats) error
type Shutdown func() error
