// Package preflight checks that a build can start: the input folders exist
// and are readable, the output folders are writable, the pose family is
// supported and the external tools are installed.
//
// The check command prints every result; build runs the same checks and
// refuses to start when a required one fails.
package preflight
