// Package anim plays back precomputed ball paths as timed interpolations.
//
// Each [Ball] runs a small state machine, Waiting -> Dropping -> Landing ->
// Disposed, and a [Batch] owns every ball of one drop. A batch has no
// goroutines or timers of its own: whoever owns it calls [Batch.Advance]
// once per frame with the elapsed time, and every visual change is reported
// to a [Sink].
//
// # Example
//
//	bt, _ := anim.NewBatch(b, 100, anim.DefaultTiming(), rng, sink)
//	for !bt.Advance(16 * time.Millisecond) {
//		// render
//	}
package anim
