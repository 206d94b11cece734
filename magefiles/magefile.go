//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "bin/hoursheet"
	mainPkg = "./cmd/app"
)

func version() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	if v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil && v != "" {
		return v
	}
	return "dev"
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy")
	return sh.Run("go", "mod", "tidy")
}

// Vet runs go vet over every package.
func Vet() error {
	fmt.Println(">> go vet ./...")
	return sh.Run("go", "vet", "./...")
}

// Test runs the test suite with the race detector.
func Test() error {
	fmt.Println(">> go test -race ./...")
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Build compiles the binary to ./bin/hoursheet with the version stamped in.
func Build() error {
	mg.Deps(Tidy)
	v := version()
	fmt.Println(">> Building", binary, v)
	ldflags := "-s -w -X github.com/starford/hoursheet/internal.Version=" + v
	return sh.Run("go", "build", "-ldflags", ldflags, "-o", binary, mainPkg)
}

// Run builds then starts the HTTP server, loading .env when present.
func Run() error {
	mg.Deps(Build)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	fmt.Println(">> Starting server ...")
	return sh.RunV(binary, "serve")
}

// Clean removes build output.
func Clean() error {
	fmt.Println(">> Cleaning bin/")
	return sh.Rm("bin")
}
