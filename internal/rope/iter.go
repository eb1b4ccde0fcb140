package rope

import "strings"

// LeafIterator walks the text chunks of a rope in order.
type LeafIterator struct {
	stack []*node
	text  string
}

// Leaves returns an iterator over the rope's text chunks.
func (r Rope) Leaves() *LeafIterator {
	it := &LeafIterator{}
	if r.root != nil {
		it.stack = append(it.stack, r.root)
	}
	return it
}

// Next advances to the next chunk.
func (it *LeafIterator) Next() bool {
	for len(it.stack) > 0 {
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		if n.isLeaf() {
			it.text = n.text
			return true
		}
		it.stack = append(it.stack, n.right, n.left)
	}
	return false
}

// Text returns the current chunk.
func (it *LeafIterator) Text() string {
	return it.text
}

// LineIterator iterates over raw lines. Each line includes its trailing
// newline, except possibly the last. An empty rope yields no lines, and a
// trailing newline does not start an extra empty line.
type LineIterator struct {
	leaves  *LeafIterator
	pending string
	line    string
	index   int
}

// Lines returns an iterator over the rope's raw lines.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{leaves: r.Leaves(), index: -1}
}

// Next advances to the next line.
func (it *LineIterator) Next() bool {
	var sb strings.Builder
	for {
		if i := strings.IndexByte(it.pending, '\n'); i >= 0 {
			sb.WriteString(it.pending[:i+1])
			it.pending = it.pending[i+1:]
			break
		}
		sb.WriteString(it.pending)
		it.pending = ""
		if !it.leaves.Next() {
			break
		}
		it.pending = it.leaves.Text()
	}
	if sb.Len() == 0 {
		return false
	}
	it.line = sb.String()
	it.index++
	return true
}

// Text returns the current line including its newline.
func (it *LineIterator) Text() string {
	return it.line
}

// Line returns the current 0-indexed line number.
func (it *LineIterator) Line() int {
	return it.index
}

// RawLines collects all raw lines of the rope.
func (r Rope) RawLines() []string {
	lines := make([]string, 0, r.Newlines()+1)
	it := r.Lines()
	for it.Next() {
		lines = append(lines, it.Text())
	}
	return lines
}
