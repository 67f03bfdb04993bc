// Package version holds the collector version.
// Release builds set it with ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/meta-collector/internal/version.Version=v1.2.3" ./cmd/meta-collector
package version

// Version defaults to "dev" for local builds.
var Version = "dev"

// UserAgent is the User-Agent sent to the data providers.
func UserAgent() string {
	return "meta-collector/" + Version
}
