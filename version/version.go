// Package version holds build-time version metadata, overridable via
// -ldflags "-X github.com/clepsy/deskagent/version.Version=...".
package version

import "fmt"

var (
	Version = "0.1.0"
	Date    = "unknown"
)

// String renders the version and build date for the version subcommand.
func String() string {
	return fmt.Sprintf("agentd version %s (built %s)", Version, Date)
}
