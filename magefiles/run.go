//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the procedural testbed city.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the pass described by a TOML config, e.g. `mage run:config city.toml`.
func (Run) Config(path string) error {
	if _, err := executeCmd("go", withArgs("run", "main.go", "-config", path), withStream()); err != nil {
		return err
	}
	return nil
}
