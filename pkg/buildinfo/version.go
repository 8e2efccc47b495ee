// Package buildinfo holds version information injected at link time:
//
//	go build -ldflags "-X github.com/matzehuels/floorcad/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/floorcad/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/floorcad/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Short returns "floorcad <version> (<commit>)" for logs and the health endpoint.
func Short() string {
	return fmt.Sprintf("floorcad %s (%s)", Version, Commit)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
