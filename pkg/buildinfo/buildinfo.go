// Package buildinfo carries version metadata injected at link time:
//
//	go build -ldflags "-X github.com/williamokano/docdeploy/pkg/buildinfo.Version=v1.2.0 \
//	  -X github.com/williamokano/docdeploy/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/williamokano/docdeploy/pkg/buildinfo.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// String renders the build metadata on one line
func String() string {
	return fmt.Sprintf("docdeploy %s (commit %s, built %s, %s)", Version, Commit, BuildTime, runtime.Version())
}
