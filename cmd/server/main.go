// Package main is the entry point for the studyhub binary.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. All commands, configuration and
// wiring live in internal/cli; main only runs the command tree and turns an
// error into a non-zero exit code.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// `go build ./cmd/server` produces the studyhub binary; `studyhub serve`
// starts the HTTP API.
package main

import (
	"os"

	"github.com/sakif/studyhub/internal/cli"
)

func main() {
	// cobra has already printed the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
