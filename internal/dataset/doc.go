// Package dataset persists examples.
//
// Each subset is written as a pair of files in matching order: a text file
// with one cue per line and a SQLite feature container with one row per
// example. CappedWriter enforces the per-subset example limit; Container is
// also used on its own by the size and combine commands.
package dataset
