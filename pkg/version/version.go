// Package version exposes build version information for the cardforge
// binary.
package version

import "fmt"

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/rshade/cardforge/pkg/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// GetVersion returns the short version string.
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with commit and build date.
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
