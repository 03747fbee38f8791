// Package version carries the build identity reported by /package-version.
package version

const (
	// Name is the service name used for telemetry and logging.
	Name = "pintd"

	// Version is the package version string reported to clients.
	Version = "2.0.0"
)
