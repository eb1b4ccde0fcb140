package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// dmpDiff runs diff-match-patch in line mode and feeds the result to bld.
// It returns false if opts.Stale fired.
func dmpDiff(a, b []string, opts Options, bld *builder) bool {
	if opts.stale() {
		return false
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = opts.Timeout

	// Line mode encodes every distinct line as one rune.
	runesA, runesB, _ := dmp.DiffLinesToRunes(strings.Join(a, ""), strings.Join(b, ""))
	diffs := dmp.DiffMainRunes(runesA, runesB, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	if opts.stale() {
		return false
	}

	type step struct {
		op    diffmatchpatch.Operation
		count int
	}
	steps := make([]step, 0, len(diffs))
	left, right := 0, 0
	consistent := true
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for i := 0; consistent && i < n; i++ {
				consistent = left+i < len(a) && right+i < len(b) && a[left+i] == b[right+i]
			}
			left += n
			right += n
		case diffmatchpatch.DiffDelete:
			left += n
		case diffmatchpatch.DiffInsert:
			right += n
		}
		steps = append(steps, step{op: d.Type, count: n})
	}

	// Anything that does not line up with the input becomes one replacement.
	if !consistent || left != len(a) || right != len(b) {
		bld.remove(len(a))
		bld.add(len(b))
		return true
	}

	for _, s := range steps {
		switch s.op {
		case diffmatchpatch.DiffEqual:
			bld.equal(s.count)
		case diffmatchpatch.DiffDelete:
			bld.remove(s.count)
		case diffmatchpatch.DiffInsert:
			bld.add(s.count)
		}
	}
	return true
}
