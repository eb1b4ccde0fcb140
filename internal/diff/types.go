package diff

import (
	"errors"
	"fmt"
)

// Kind tags a diff block.
type Kind uint8

const (
	// Both marks lines unchanged on both sides.
	Both Kind = iota

	// Left marks lines present only in the left text.
	Left

	// Right marks lines present only in the right text.
	Right
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case Both:
		return "both"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// LineRange is a half-open range of 0-indexed lines: [Start, End).
type LineRange struct {
	Start int
	End   int
}

// Len returns the number of lines in the range.
func (r LineRange) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range holds no lines.
func (r LineRange) IsEmpty() bool {
	return r.Start >= r.End
}

// String returns a human-readable representation of the range.
func (r LineRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Line is one contiguous diff block.
//
// For Left blocks Right is empty and sits where the removed lines would be
// in the right text; Right blocks mirror that. Skip is set only on Both
// blocks of a result with changes: it is the part of the block, relative to
// the block start, lying further than the context distance from any change.
type Line struct {
	Kind  Kind
	Left  LineRange
	Right LineRange
	Skip  *LineRange
}

// String returns a compact representation such as "both[0,1)[0,1)".
func (l Line) String() string {
	return l.Kind.String() + l.Left.String() + l.Right.String()
}

// Result is a complete diff: blocks in ascending line order covering
// [0, LeftLines) and [0, RightLines) with no gaps and no overlaps.
type Result struct {
	Lines      []Line
	LeftLines  int
	RightLines int
}

// HasChanges returns true if any block is one-sided.
func (r *Result) HasChanges() bool {
	for _, l := range r.Lines {
		if l.Kind != Both {
			return true
		}
	}
	return false
}

// Stats summarizes a result.
type Stats struct {
	Unchanged int
	Removed   int
	Added     int
	Blocks    int
}

// Stats counts lines per kind.
func (r *Result) Stats() Stats {
	s := Stats{Blocks: len(r.Lines)}
	for _, l := range r.Lines {
		switch l.Kind {
		case Both:
			s.Unchanged += l.Left.Len()
		case Left:
			s.Removed += l.Left.Len()
		case Right:
			s.Added += l.Right.Len()
		}
	}
	return s
}

// ErrInvalidResult is wrapped by Validate failures.
var ErrInvalidResult = errors.New("invalid diff result")

// Validate checks that the blocks partition both sides exactly once and
// that no two adjacent blocks share a kind.
func (r *Result) Validate() error {
	left, right := 0, 0
	for i, l := range r.Lines {
		if l.Left.Start != left || l.Right.Start != right {
			return fmt.Errorf("%w: block %d %s does not start at (%d,%d)", ErrInvalidResult, i, l, left, right)
		}
		switch l.Kind {
		case Both:
			if l.Left.Len() != l.Right.Len() || l.Left.IsEmpty() {
				return fmt.Errorf("%w: both block %d %s is unbalanced or empty", ErrInvalidResult, i, l)
			}
		case Left:
			if l.Left.IsEmpty() || !l.Right.IsEmpty() || l.Right.End != l.Right.Start {
				return fmt.Errorf("%w: left block %d %s", ErrInvalidResult, i, l)
			}
		case Right:
			if l.Right.IsEmpty() || !l.Left.IsEmpty() || l.Left.End != l.Left.Start {
				return fmt.Errorf("%w: right block %d %s", ErrInvalidResult, i, l)
			}
		}
		if i > 0 && r.Lines[i-1].Kind == l.Kind {
			return fmt.Errorf("%w: blocks %d and %d are both %s", ErrInvalidResult, i-1, i, l.Kind)
		}
		left, right = l.Left.End, l.Right.End
	}
	if left != r.LeftLines || right != r.RightLines {
		return fmt.Errorf("%w: covers (%d,%d) of (%d,%d) lines", ErrInvalidResult, left, right, r.LeftLines, r.RightLines)
	}
	return nil
}

// Mirror returns the diff of the right text against the left one.
func (r *Result) Mirror() *Result {
	m := &Result{
		Lines:      make([]Line, len(r.Lines)),
		LeftLines:  r.RightLines,
		RightLines: r.LeftLines,
	}
	for i, l := range r.Lines {
		kind := l.Kind
		switch kind {
		case Left:
			kind = Right
		case Right:
			kind = Left
		}
		m.Lines[i] = Line{Kind: kind, Left: l.Right, Right: l.Left, Skip: l.Skip}
	}
	// Keep removals ahead of additions inside each change region.
	for i := 1; i < len(m.Lines); i++ {
		if m.Lines[i-1].Kind == Right && m.Lines[i].Kind == Left {
			prev, cur := m.Lines[i-1], m.Lines[i]
			cur.Right = LineRange{Start: prev.Right.Start, End: prev.Right.Start}
			prev.Left = LineRange{Start: cur.Left.End, End: cur.Left.End}
			m.Lines[i-1], m.Lines[i] = cur, prev
		}
	}
	return m
}
