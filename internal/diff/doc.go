// Package diff computes two-way line diffs between text snapshots.
//
// A Result is an ordered list of blocks. Each block is unchanged on both
// sides (Both), present only in the left text (Left), or present only in the
// right text (Right). Blocks are expressed as half-open line ranges in each
// side's own coordinates and together cover both texts exactly once:
//
//	left  = "a\nb\nc\n"
//	right = "a\nx\nc\n"
//
//	Both  left [0,1) right [0,1)
//	Left  left [1,2) right [1,1)
//	Right left [2,2) right [1,2)
//	Both  left [2,3) right [2,3)
//
// Lines are compared including their terminators, so "a" and "a\n" differ.
//
// Compute is a pure function: it never mutates its inputs and may run on
// any goroutine. Callers that may no longer want the answer pass a Stale
// func in Options; the computation polls it every CheckInterval steps and
// gives up early when it reports true. ContextLines does not pace that
// polling; it only sizes Skip folds and unified diff hunks.
//
// Swapping the inputs yields exactly the Mirror of the result: both
// algorithms always run in one canonical orientation.
//
// The default algorithm is Myers' O(ND) diff. Inputs that would exceed the
// configured line or memory limits are diffed with the diff-match-patch line
// mode instead, which is bounded by a timeout.
package diff
