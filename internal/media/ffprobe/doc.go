// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: video stream properties including frame rate and frame count
//   - Format: container-level metadata
//
// Inspect executes ffprobe and returns the parsed Result. Helper methods on
// Result derive the video frame rate and playing time used for frame rate
// resolution and dummy subtitle generation.
package ffprobe
