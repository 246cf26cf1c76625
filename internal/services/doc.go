// Package services defines shared utilities consumed by the pipeline stages
// and their adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and video ids for
//     logging.
//   - Structured error markers plus the Wrap helper that tag failures with a
//     kind (configuration, unsupported, data corruption, capacity) so the CLI
//     can report them and pick an exit status.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
