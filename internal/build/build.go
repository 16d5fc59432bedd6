// Package build holds build-time metadata for the termai binary.
package build

var (
	// AppName is the display name of the application.
	AppName = "termai"

	// Slug is the machine-friendly name used for paths and env prefixes.
	Slug = "termai"

	// Version is set via ldflags at build time.
	Version = "0.0.0"
)
