// Package textutil provides text processing helpers shared by the subtitle
// loader and the input layout.
//
// NormalizeCueText turns raw cue content into a single line of text: line
// breaks become spaces, runs of whitespace collapse, and an optional Unicode
// normalization form is applied. FileID extracts the dot-delimited id token
// from input file names such as "focusnews.071.srt".
package textutil
