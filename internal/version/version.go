// Package version exposes the build version string.
package version

// Version is the release version, overridden at build time via
// -ldflags "-X github.com/sevahub/relay/internal/version.Version=...".
var Version = "v0.1.0"
