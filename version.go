// Package plume generates framework-aware animation components.
package plume

// Version is the CLI version, overridden at build time with
// -ldflags "-X github.com/simonhull/firebird-suite/plume.Version=...".
var Version = "0.1.0"
