// Package version reports the build version of coursesite.
package version

import "runtime/debug"

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/coursesite/internal/version.Version=v1.0.0".
var Version = "unknown"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Get returns Version, falling back to the module version recorded by
// `go install` when ldflags were not used.
func Get() string {
	if Version != "unknown" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String formats the version with its build metadata.
func String() string {
	return Get() + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
