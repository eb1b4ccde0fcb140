package diff

// editOp is a single step of an edit script.
type editOp uint8

const (
	opEqual editOp = iota
	opDelete
	opInsert
)

type myersStatus uint8

const (
	myersDone myersStatus = iota
	myersAborted
	myersExhausted
)

// lineIDs interns lines so the inner loop compares ints.
func lineIDs(a, b []string) ([]int, []int) {
	ids := make(map[string]int, len(a)+len(b))
	intern := func(lines []string) []int {
		out := make([]int, len(lines))
		for i, line := range lines {
			id, ok := ids[line]
			if !ok {
				id = len(ids)
				ids[line] = id
			}
			out[i] = id
		}
		return out
	}
	return intern(a), intern(b)
}

// myersDiff implements the Myers diff algorithm.
// It stops early with myersAborted when opts.Stale fires, and with
// myersExhausted once the saved trace outgrows opts.MaxMemoryMB.
func myersDiff(oldLines, newLines []string, opts Options) ([]editOp, myersStatus) {
	a, b := lineIDs(oldLines, newLines)
	n, m := len(a), len(b)

	maxD := n + m
	offset := maxD + 1 // V[-maxD-1..maxD+1] maps to v[0..2*maxD+2]
	v := make([]int, 2*maxD+3)

	var budget int64 = -1
	if opts.MaxMemoryMB > 0 {
		budget = int64(opts.MaxMemoryMB) * 1024 * 1024
	}
	var used int64
	var trace [][]int
	steps := 0

	final := -1
outer:
	for d := 0; d <= maxD; d++ {
		// Save the window of V that backtracking at depth d reads.
		window := make([]int, 2*d+3)
		copy(window, v[offset-d-1:offset+d+2])
		trace = append(trace, window)
		used += int64(len(window)) * 8
		if budget >= 0 && used > budget {
			return nil, myersExhausted
		}

		for k := -d; k <= d; k += 2 {
			steps++
			if steps%opts.CheckInterval == 0 && opts.stale() {
				return nil, myersAborted
			}

			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k

			// Extend diagonal (equal elements)
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}

			v[offset+k] = x

			if x >= n && y >= m {
				final = d
				break outer
			}
		}
	}

	return backtrack(trace, final, n, m), myersDone
}

// backtrack reconstructs the edit script from the saved V windows.
func backtrack(trace [][]int, final, n, m int) []editOp {
	at := func(d, k int) int {
		return trace[d][k+d+1]
	}

	x, y := n, m
	ops := make([]editOp, 0, n+m)

	for d := final; d >= 0; d-- {
		k := x - y

		var prevK int
		if k == -d || (k != d && at(d, k-1) < at(d, k+1)) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		prevX := at(d, prevK)
		prevY := prevX - prevK

		// Walk back diagonals (equal elements)
		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, opEqual)
		}

		if d > 0 {
			if x > prevX {
				x--
				ops = append(ops, opDelete)
			} else if y > prevY {
				y--
				ops = append(ops, opInsert)
			}
		}
	}

	// Reverse the ops (we built them backwards)
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}
