//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// A build step that compiles every tool into ./bin
func Build() error {
	mg.Deps(BuildLhe2lhe, BuildLhemerge, BuildLhesplit, BuildLhefix,
		BuildLheinfo, BuildLheshow, BuildLhefilter,
		BuildLhe2hepmc, BuildHepmc2lhe, BuildLhe2hdf5)
	fmt.Println("Compilation finished")
	return nil
}

func BuildLhe2lhe() error   { return buildTool("lhe2lhe") }
func BuildLhemerge() error  { return buildTool("lhemerge") }
func BuildLhesplit() error  { return buildTool("lhesplit") }
func BuildLhefix() error    { return buildTool("lhefix") }
func BuildLheinfo() error   { return buildTool("lheinfo") }
func BuildLheshow() error   { return buildTool("lheshow") }
func BuildLhefilter() error { return buildTool("lhefilter") }
func BuildLhe2hepmc() error { return buildTool("lhe2hepmc") }
func BuildHepmc2lhe() error { return buildTool("hepmc2lhe") }
func BuildLhe2hdf5() error  { return buildTool("lhe2hdf5") }

// Runs the whole test suite
func Test() error {
	fmt.Println("Running tests...")
	cmd := exec.Command("go", "test", "./...")
	cmd.Env = cgoEnv()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func buildTool(name string) error {
	fmt.Printf("Building %s executable...\n", name)
	cmd := exec.Command("go", "build", "-o", "./bin/"+name, "./"+name)
	cmd.Env = cgoEnv()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// The HDF5 bindings need cgo, so the flags pointing at the HDF5
// installation have to survive into the go invocation.
func cgoEnv() []string {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	return append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
}
