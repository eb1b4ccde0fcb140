package rope

import (
	"io"
	"strings"
)

// Rope is an immutable rope data structure for efficient text storage.
// Operations return new Rope values; the original is never modified.
// The zero value is an empty rope.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() Rope {
	return Rope{}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	return Rope{root: buildBalanced(chunk(s))}
}

// FromReader creates a rope from an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Rope{}, err
	}
	return FromString(string(data)), nil
}

// Len returns the total byte length.
func (r Rope) Len() int {
	if r.root == nil {
		return 0
	}
	return r.root.bytes
}

// Newlines returns the number of newline characters.
func (r Rope) Newlines() int {
	if r.root == nil {
		return 0
	}
	return r.root.newlines
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() int {
	return r.Newlines() + 1
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// String returns the full text as a string.
// Use sparingly for large ropes.
func (r Rope) String() string {
	return r.Slice(0, r.Len())
}

// Slice returns the text in the byte range [start, end).
func (r Rope) Slice(start, end int) string {
	size := min(end, r.Len()) - max(start, 0)
	if r.root == nil || size <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(size)
	appendRange(&sb, r.root, start, end)
	return sb.String()
}

// Insert inserts text at the given byte offset.
// Returns a new rope; original is unchanged.
func (r Rope) Insert(offset int, text string) Rope {
	if text == "" {
		return r
	}
	left, right := split(r.root, offset)
	return Rope{root: join(join(left, buildBalanced(chunk(text))), right)}
}

// Delete removes text in the byte range [start, end).
// Returns a new rope; original is unchanged.
func (r Rope) Delete(start, end int) Rope {
	if r.root == nil || start >= end {
		return r
	}
	left, rest := split(r.root, start)
	_, right := split(rest, end-start)
	return Rope{root: join(left, right)}
}

// Replace replaces text in the byte range [start, end) with new text.
func (r Rope) Replace(start, end int, text string) Rope {
	return r.Delete(start, end).Insert(start, text)
}

// Split splits the rope at offset. The left rope contains [0, offset),
// the right contains [offset, end).
func (r Rope) Split(offset int) (Rope, Rope) {
	left, right := split(r.root, offset)
	return Rope{root: left}, Rope{root: right}
}

// Concat concatenates two ropes.
func (r Rope) Concat(other Rope) Rope {
	return Rope{root: join(r.root, other.root)}
}

// LineStartOffset returns the byte offset of the start of the given line.
// Lines are 0-indexed. Lines past the end map to Len().
func (r Rope) LineStartOffset(line int) int {
	if line <= 0 || r.root == nil {
		return 0
	}
	if line > r.root.newlines {
		return r.Len()
	}
	return newlineOffset(r.root, line-1)
}

// LineText returns the text of the given line without its newline.
func (r Rope) LineText(line int) string {
	start := r.LineStartOffset(line)
	end := r.Len()
	if line < r.Newlines() {
		end = r.LineStartOffset(line+1) - 1
	}
	return r.Slice(start, end)
}

// Height returns the height of the tree. Useful for testing balance.
func (r Rope) Height() int {
	return height(r.root) + 1
}

// Equals returns true if two ropes contain the same text.
func (r Rope) Equals(other Rope) bool {
	if r.root == other.root {
		return true
	}
	if r.Len() != other.Len() || r.Newlines() != other.Newlines() {
		return false
	}
	return r.String() == other.String()
}

// Shares reports whether both ropes are backed by the same tree.
// Snapshots taken without intervening edits share their root.
func (r Rope) Shares(other Rope) bool {
	return r.root == other.root
}
