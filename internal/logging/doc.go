// Package logging assembles structured slog loggers for posecorpus.
//
// Console output is either a compact "ts LEVEL component: msg key=value" line
// or JSON. When a log directory is configured every record is also appended
// to a JSON log file, which keeps debug detail regardless of the console
// level. Context helpers tag records with the run id, pipeline stage and video
// id, and NewNop gives tests a logger that cannot fail.
package logging
