package diff

import "strings"

// Text is anything that can present its content as raw lines, each line
// keeping its terminator. buffer.Snapshot implements it.
type Text interface {
	DiffLines() []string
}

// Compute diffs two texts. It returns false if the computation was
// abandoned because opts.Stale reported true.
func Compute(left, right Text, opts Options) (*Result, bool) {
	if opts.stale() {
		return nil, false
	}
	return ComputeLines(left.DiffLines(), right.DiffLines(), opts)
}

// ComputeStrings diffs two strings line by line.
func ComputeStrings(left, right string, opts Options) (*Result, bool) {
	return ComputeLines(SplitLines(left), SplitLines(right), opts)
}

// ComputeLines diffs two pre-split line slices. Swapping a and b yields
// exactly the Mirror of the result.
func ComputeLines(a, b []string, opts Options) (*Result, bool) {
	opts = opts.withDefaults()
	if opts.stale() {
		return nil, false
	}

	// Alignment ties are broken one way only, so always compute in one
	// orientation and mirror when the inputs arrive the other way round.
	if linesLess(b, a) {
		r, ok := computeLines(b, a, opts)
		if !ok {
			return nil, false
		}
		return r.Mirror(), true
	}
	return computeLines(a, b, opts)
}

func computeLines(a, b []string, opts Options) (*Result, bool) {
	prefix := commonPrefix(a, b)
	suffix := commonSuffix(a[prefix:], b[prefix:])
	midA := a[prefix : len(a)-suffix]
	midB := b[prefix : len(b)-suffix]

	bld := &builder{}
	bld.equal(prefix)

	switch {
	case len(midA) == 0 || len(midB) == 0:
		bld.remove(len(midA))
		bld.add(len(midB))
	case opts.Algorithm == AlgorithmDMP || exceedsLineLimit(len(midA), len(midB), opts):
		if !dmpDiff(midA, midB, opts, bld) {
			return nil, false
		}
	default:
		ops, status := myersDiff(midA, midB, opts)
		switch status {
		case myersAborted:
			return nil, false
		case myersExhausted:
			if !dmpDiff(midA, midB, opts, bld) {
				return nil, false
			}
		default:
			bld.apply(ops)
		}
	}

	bld.equal(suffix)
	return bld.result(opts.ContextLines), true
}

// SplitLines splits s into raw lines that keep their terminators.
// The empty string has no lines.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// linesLess orders line slices by length, then line by line.
func linesLess(a, b []string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func commonPrefix(a, b []string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffix(a, b []string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

func exceedsLineLimit(n, m int, opts Options) bool {
	return opts.MaxLines > 0 && (n > opts.MaxLines || m > opts.MaxLines)
}
