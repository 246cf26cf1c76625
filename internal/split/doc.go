// Package split partitions the example index space into train, dev and test
// subsets.
//
// Assignments are dense: every index in [0, N) carries a Subset, with
// Excluded marking examples that are never written. The random generator is
// passed in explicitly so identical inputs and seed give identical output.
package split
