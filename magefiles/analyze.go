//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Analyze builds the CLI and ranks the collection described by
// challenge1b_input.json, writing output/challenge1b_output.json.
func Analyze() error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), "analyze",
		"--input", "challenge1b_input.json",
		"--output", filepath.Join("output", "challenge1b_output.json"),
		"--table")
}
