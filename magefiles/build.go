//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads the modules and builds the binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("mod", "download")); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/posecreator", "."), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs every package test.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
