// Package descent generates ball paths down the peg lattice and records
// them on a [board.Board].
//
// A path is drawn up front from an injected [Source], so the same seed
// always produces the same descent regardless of how playback is timed.
package descent
