// Package version reports the build of the running binary.
package version

import "fmt"

// Overridden at build time with
// -ldflags "-X github.com/kailas-cloud/mdsearch/internal/version.Version=v1.2.0".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info describes the build. It is served on /healthz.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build info.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

func (i Info) String() string {
	return fmt.Sprintf("mdsearch %s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}
