// Package config defines the updater settings and provides helpers to load,
// validate and save them in YAML format.
//
// Without a settings file the built-in source table from Default is used.
package config
