// Package version holds the build version.
package version

// Version is the application version. Release builds override it with
// -ldflags "-X langcover/pkg/version.Version=...".
var Version = "v0.3.0"
