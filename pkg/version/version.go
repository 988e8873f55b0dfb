// Package version holds build-time version metadata for the phasergun CLI.
package version

import "runtime"

// Version is overridden at build time via -ldflags.
var Version = "dev"

// GoVersion is the Go toolchain version used to build this binary.
var GoVersion = runtime.Version()
