// Package version exposes CellBrush build information.
package version

// Set at build time, e.g.
//
//	go build -ldflags "-X cellbrush/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// Version is the semantic application version.
	Version = "0.1.0"

	// BuildTime is the UTC time the binary was built.
	BuildTime = "unknown"

	// GitCommit is the source revision the binary was built from.
	GitCommit = "unknown"
)
