// Package framerate discovers the native frame rate of each video and
// converts pose sequences to a target rate.
//
// Only three conversions exist: identity, halving (keep every other frame)
// and 30 to 25 fps (drop one frame in six). Any other pair is rejected as
// unsupported before a single frame index is computed.
package framerate
