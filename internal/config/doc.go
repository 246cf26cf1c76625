// Package config loads, normalizes, and validates posecorpus configuration.
//
// It supplies defaults, expands user paths, reads TOML files, loads a .env
// file, and honours POSECORPUS_* environment fallbacks. Command-line flags are
// applied on top by the CLI, which then calls Refresh.
package config
