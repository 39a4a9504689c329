// Package version holds the build metadata stamped in at link time.
package version

//nolint:revive // Overwritten via -ldflags by the release build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
