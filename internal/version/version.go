// Package version carries build metadata injected with -ldflags.
package version

// Set via -ldflags "-X github.com/doeshing/cmdverify/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)
