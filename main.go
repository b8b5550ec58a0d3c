/*
Extrudes building footprints into textured meshes. Without -config the
procedural testbed city is built.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/extruder/engine"
	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/testbed"
)

func main() {
	configPath := flag.String("config", "", "TOML application config")
	watch := flag.Bool("watch", false, "re-run whenever the inputs change")
	flag.Parse()

	var app *engine.Application
	if *configPath == "" {
		app = testbed.NewTestCity().Application
	} else {
		config, err := engine.LoadApplicationConfig(*configPath)
		if err != nil {
			core.LogFatal(err.Error())
		}
		app = engine.NewApplication(config)
	}
	if *watch {
		app.ApplicationConfig.Watch = true
	}

	e, err := engine.New(app)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
	}()

	// run engine
	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		core.LogFatal(runErr.Error())
	}
}
