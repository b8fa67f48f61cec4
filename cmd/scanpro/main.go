// ScanPro is a concurrent TCP port scanner with scan profiles, port
// presets, and a daemon mode exposing a REST API with scheduled scans.
package main

import (
	"github.com/MAS191/ScanPro/cmd/cli"
)

// Build information - set via ldflags:
//
//	go build -ldflags "-X main.version=v0.3.0 -X main.commit=$(git rev-parse --short HEAD) -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
