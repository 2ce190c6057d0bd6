package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/plutus-ledger/plutus/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Summary is the version string printed by plutus --version.
func Summary() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
