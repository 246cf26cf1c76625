// Package align turns subtitle cues and a pose sequence into examples.
//
// Cue times are converted to frame indices at the sequence's rate, so the
// sequence must already be converted to the governing rate. A cue that starts
// past the last frame is corrupt input; a cue that ends past it is clamped.
package align
