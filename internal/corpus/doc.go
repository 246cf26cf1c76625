// Package corpus drives a full corpus build.
//
// Run loads every subtitle file once, computes the split from the number of
// usable cues, then streams the pose archives one at a time in listing
// order. Each produced example receives the next global index and is routed
// to the writer its index was assigned to. Under dry-run the run stops at the
// first example past the contiguous candidate prefix.
//
// The input root holds videos/, subtitles/ and one folder per pose family
// (openpose/ or mediapipe/). Files are paired by the dot-delimited id token
// in their names.
package corpus
