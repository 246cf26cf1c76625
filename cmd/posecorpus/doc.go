// Package main hosts the posecorpus CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies flag overrides
// and hands off to the internal packages: corpus for builds and dummy
// subtitles, split for dry split previews, dataset for container utilities
// and preflight for environment checks. Commands print human-readable tables
// by default and JSON with --json.
//
// Keep this package lean: new behavior belongs in the internal packages and
// is surfaced here through a dedicated command or flag.
package main
