package build

import (
	"fmt"
	"runtime"
	"strings"
)

// Commit stores the commit hash of this build, overridden via the linker at
// build time: -ldflags "-X github.com/frisbee-lang/frisbee/internal/build.Commit=...".
var Commit string

// CommitHash is a fallback for Commit, set by some build systems that prefer
// this variable name. The version command prints it when Commit is empty.
var CommitHash string

// RawTags holds the comma-separated build tags this binary was compiled
// with, also overridden at build time via the linker.
var RawTags string

// GoVersion is the version of the Go toolchain used to compile this binary.
var GoVersion = runtime.Version()

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0

	// appPreRelease is appended to the semantic version when this is a
	// pre-release build. Leave empty for a tagged release build.
	appPreRelease = "beta"
)

// semanticVersion returns the application version as a properly formed
// semantic version string.
func semanticVersion() string {
	version := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if appPreRelease != "" {
		version = fmt.Sprintf("%s-%s", version, appPreRelease)
	}
	return version
}

// Version returns the application version as a properly formed string per
// the semantic versioning 2.0.0 spec (https://semver.org/).
func Version() string {
	return semanticVersion()
}

// Tags returns the list of build tags this binary was compiled with.
func Tags() []string {
	if RawTags == "" {
		return nil
	}
	return strings.Split(RawTags, ",")
}
