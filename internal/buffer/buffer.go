package buffer

import (
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/livediff/internal/rope"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap or are not in reverse order")
)

// ByteOffset represents a byte position in the buffer.
type ByteOffset = int

// Identity names the content a buffer represents, e.g. "file:/abs/path".
// Two buffers with equal identities hold the same document.
type Identity string

// Revision is a buffer's edit counter. It starts at 0 and grows by one per edit.
type Revision = uint64

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer wraps a Rope with a revision counter and change notification.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	rope       rope.Rope
	revision   atomic.Uint64
	identity   Identity
	lineEnding LineEnding
	raw        bool

	subMu   sync.Mutex
	subs    map[uint64]func()
	nextSub uint64
}

// NewBuffer creates a new empty buffer at revision 0.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		rope:       rope.New(),
		lineEnding: LineEndingLF,
		subs:       make(map[uint64]func()),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromString creates a buffer with initial content at revision 0.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.rope = rope.FromString(b.normalizeLineEndings(s))
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	// Read everything first: CRLF pairs may straddle read boundaries.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// normalizeLineEndings converts all line endings to the buffer's style.
// Raw buffers keep text byte for byte.
func (b *Buffer) normalizeLineEndings(s string) string {
	if b.raw || (!strings.ContainsRune(s, '\r') && b.lineEnding == LineEndingLF) {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if b.lineEnding != LineEndingLF {
		s = strings.ReplaceAll(s, "\n", b.lineEnding.Sequence())
	}
	return s
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Len()
}

// LineCount returns the number of lines (newlines + 1).
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineCount()
}

// Revision returns the current revision. It never blocks and never
// observes a value lower than one previously returned.
func (b *Buffer) Revision() Revision {
	return b.revision.Load()
}

// Identity returns the buffer's content identity.
func (b *Buffer) Identity() Identity {
	return b.identity
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// Snapshot returns a read-only snapshot of the current buffer state.
// The rope and the revision are read under the same lock, so they always
// describe the same state. Safe for use from any goroutine.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{
		rope:     b.rope,
		revision: b.revision.Load(),
		identity: b.identity,
	}
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	var end ByteOffset
	err := b.mutate(func(r rope.Rope) (rope.Rope, error) {
		if offset < 0 || offset > r.Len() {
			return r, ErrOffsetOutOfRange
		}
		text = b.normalizeLineEndings(text)
		end = offset + len(text)
		return r.Insert(offset, text), nil
	})
	return end, err
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end ByteOffset) error {
	return b.mutate(func(r rope.Rope) (rope.Rope, error) {
		if start < 0 || start > end || end > r.Len() {
			return r, ErrRangeInvalid
		}
		return r.Delete(start, end), nil
	})
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	var newEnd ByteOffset
	err := b.mutate(func(r rope.Rope) (rope.Rope, error) {
		if start < 0 || start > end || end > r.Len() {
			return r, ErrRangeInvalid
		}
		text = b.normalizeLineEndings(text)
		newEnd = start + len(text)
		return r.Replace(start, end, text), nil
	})
	return newEnd, err
}

// ApplyEdits applies multiple edits as a single revision.
// Edits must be in reverse order (highest offset first).
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return ErrEditsOverlap
		}
	}

	return b.mutate(func(r rope.Rope) (rope.Rope, error) {
		for _, edit := range edits {
			if !edit.Range.valid(r.Len()) {
				return r, ErrRangeInvalid
			}
		}
		for _, edit := range edits {
			r = r.Replace(edit.Range.Start, edit.Range.End, b.normalizeLineEndings(edit.NewText))
		}
		return r, nil
	})
}

// SetText replaces the whole content, e.g. after reloading a file.
// Setting identical text is a no-op and keeps the revision. A raw buffer
// takes its line ending style from the new text.
func (b *Buffer) SetText(text string) {
	_ = b.mutate(func(r rope.Rope) (rope.Rope, error) {
		if b.raw {
			b.lineEnding = DetectLineEnding(text)
		}
		text = b.normalizeLineEndings(text)
		if r.Len() == len(text) && r.String() == text {
			return r, nil
		}
		return rope.FromString(text), nil
	})
}

// mutate runs fn under the write lock. If fn produced a different rope the
// revision is bumped before the lock is released, then subscribers run.
func (b *Buffer) mutate(fn func(rope.Rope) (rope.Rope, error)) error {
	b.mu.Lock()
	next, err := fn(b.rope)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	if next.Shares(b.rope) {
		b.mu.Unlock()
		return nil
	}
	b.rope = next
	b.revision.Add(1)
	b.mu.Unlock()

	b.notify()
	return nil
}

// Subscribe registers fn to run after every revision bump. fn runs on the
// editing goroutine and must not block. The returned func cancels.
func (b *Buffer) Subscribe(fn func()) (cancel func()) {
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.subMu.Lock()
			delete(b.subs, id)
			b.subMu.Unlock()
		})
	}
}

func (b *Buffer) notify() {
	b.subMu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
