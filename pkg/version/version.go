// Package version reports the library release version.
package version

import "fmt"

// Release components, bumped on tagged releases.
const (
	Major = 0
	Minor = 1
	Patch = 0
)

// String returns the release version as "major.minor.patch".
func String() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}
