package buffer

import "github.com/dshills/livediff/internal/rope"

// Snapshot is an immutable view of a buffer at one revision.
// It shares the buffer's rope, so taking one is O(1), and it is safe to
// hand to any goroutine.
type Snapshot struct {
	rope     rope.Rope
	revision Revision
	identity Identity
}

// Revision returns the buffer revision this snapshot was taken at.
func (s *Snapshot) Revision() Revision {
	return s.revision
}

// Identity returns the content identity of the source buffer.
func (s *Snapshot) Identity() Identity {
	return s.identity
}

// Rope returns the underlying immutable rope.
func (s *Snapshot) Rope() rope.Rope {
	return s.rope
}

// Text returns the full snapshot content.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// Len returns the byte length of the snapshot.
func (s *Snapshot) Len() ByteOffset {
	return s.rope.Len()
}

// LineText returns the text of a line without its newline.
func (s *Snapshot) LineText(line int) string {
	return s.rope.LineText(line)
}

// DiffLines returns the raw lines the diff engine compares. Each line keeps
// its terminator; empty text has no lines.
func (s *Snapshot) DiffLines() []string {
	return s.rope.RawLines()
}
