// Package main is the entry point for fleetctl, the fleet operator CLI.
package main

import (
	"os"

	"github.com/nerrad567/fleet-core/internal/cli"
)

// Build information, set at build time via ldflags.
var version = "dev"

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr, cli.Options{Version: version}))
}
