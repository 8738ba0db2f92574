// Command netfold is the entry point for the netfold CLI: CIDR network
// aggregation, input validation, and scanning of aggregated targets.
package main

import (
	"github.com/netfold/netfold/cmd/cli"
)

// Build information - set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
