// Package deps checks that the external programs posecorpus shells out to
// are installed.
package deps
