//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"codeberg.org/snonux/agritranslate/internal"
)

const binary = "agritranslate"

// Default target to run when none is specified
var Default = Build

// Build builds the agritranslate binary
func Build() error {
	fmt.Printf("Building %s %s\n", binary, internal.Version)
	return sh.RunV("go", "build", "-o", binary, "./cmd/agritranslate")
}

// Install installs the binary into GOPATH/bin
func Install() error {
	return sh.RunV("go", "install", "./cmd/agritranslate")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs all unit tests with the race detector
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Translate runs the batch translation against ./public/locales
func Translate() error {
	mg.Deps(Build)
	return sh.RunV("./"+binary)
}

// Clean removes build artifacts
func Clean() error {
	return os.RemoveAll(binary)
}
