// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"

	// Packaged is set to "true" by the installer build. Unpackaged builds
	// run against the development data directory and testnet.
	Packaged = "false"
)

// IsPackaged reports whether this binary was built by the installer pipeline.
func IsPackaged() bool {
	return Packaged == "true"
}
