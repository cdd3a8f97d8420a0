//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the scripted posing session, writing animations to ./assets or
// $POSE_ASSET_DIR.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if err := os.MkdirAll("assets", 0755); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("run", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed with debug logging.
func (Run) Debug() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/posecreator", withEnv("POSE_LOG_LEVEL=debug"), withStream()); err != nil {
		return err
	}
	return nil
}
