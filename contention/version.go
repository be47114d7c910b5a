package contention

import "golang.org/x/mod/semver"

// Version information for the contention counter.
const (
	// Version is the current version.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides build information.
type Info struct {
	// Version is the semantic version with a leading "v".
	Version string

	// Major is the major version prefix, e.g. "v0".
	Major string

	// Algorithm describes what a run does.
	Algorithm string
}

// GetInfo returns version information.
//
// Example:
//
//	info := contention.GetInfo()
//	fmt.Printf("contention %s (%s)\n", info.Version, info.Algorithm)
func GetInfo() Info {
	v := semver.Canonical("v" + Version)
	return Info{
		Version:   v,
		Major:     semver.Major(v),
		Algorithm: "trylock counter (busy spin, no backoff)",
	}
}

// Compatible reports whether a client built against version v can read this
// build's reports: same major version and not newer than this build.
func Compatible(v string) bool {
	if len(v) > 0 && v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return false
	}
	cur := GetInfo().Version
	return semver.Major(v) == semver.Major(cur) && semver.Compare(v, cur) <= 0
}
