// Package subtitles parses SRT files into timed cues, converts cue times to
// pose frame indices, and filters out cues that cannot become training
// examples.
//
// Cue text is normalized to a single line when a file is loaded. A cue is
// usable when its normalized text is non-empty and its start frame is
// strictly before its end frame at the governing frame rate of its video.
// The loader keeps all usable cues of the corpus in memory, keyed by the
// file id shared with the video and pose archive.
package subtitles
