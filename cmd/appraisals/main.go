package main

import (
	// Site time zone must resolve on hosts without zoneinfo.
	_ "time/tzdata"

	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/hayeswinckle/appraisals/internal/cmd"
	"github.com/hayeswinckle/appraisals/internal/server/handlers"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2026-03-05"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	handlers.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		cmd.ExitWithCodeStderr(foundry.ExitFailure, "Command execution failed", err)
	}
}
