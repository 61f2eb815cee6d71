// Package version exposes build metadata for altsource-updater.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
// The same data renders the `version` subcommand and the HTTP User-Agent.
package version
