package version

import (
	"fmt"
	"runtime"
)

var (
	// BuildVersion is the hookconf release version, set via ldflags.
	BuildVersion = "dev"

	// BuildTime is the time the binary was built, set via ldflags.
	BuildTime = "unknown"

	// Commit is the git commit SHA the binary was built from, set via
	// ldflags.
	Commit = "unknown"
)

// BuildInfo returns the binary build information as a formatted string.
func BuildInfo() string {
	commitID := Commit
	if len(commitID) > 8 {
		commitID = commitID[:8]
	}

	return fmt.Sprintf("hookconf %s (%s) - %s %s/%s",
		BuildVersion,
		commitID,
		BuildTime,
		runtime.GOOS,
		runtime.GOARCH,
	)
}
