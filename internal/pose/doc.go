// Package pose holds pose-tracking sequences and the adapters that load and
// normalize them.
//
// A Sequence stores frames × persons × points × dims coordinates in one flat
// slice next to a frames × persons × points confidence slice. Operations that
// change a sequence (frame selection, normalization) return a new Sequence
// and leave the input untouched. Features is the per-example value produced
// by slicing one tracked person out of a sequence.
//
// OpenPoseProvider reads per-frame OpenPose JSON files from a directory, a
// .tar archive or a .tar.xz archive.
package pose
