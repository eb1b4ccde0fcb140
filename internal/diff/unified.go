package diff

import (
	"bytes"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// UnifiedOptions configures unified diff output.
type UnifiedOptions struct {
	// OrigName and NewName label the two sides. They default to "a" and "b".
	OrigName string
	NewName  string

	// Context is the number of unchanged lines printed around each change.
	Context int
}

// entry is one line of a flattened result.
type entry struct {
	kind        Kind
	left, right int // lines consumed on each side before this one
}

// FileDiff converts a result into a sourcegraph FileDiff.
// left and right must be the raw lines the result was computed from.
func FileDiff(left, right []string, r *Result, opts UnifiedOptions) *sgdiff.FileDiff {
	if opts.OrigName == "" {
		opts.OrigName = "a"
	}
	if opts.NewName == "" {
		opts.NewName = "b"
	}
	fd := &sgdiff.FileDiff{
		OrigName: opts.OrigName,
		NewName:  opts.NewName,
	}
	if !r.HasChanges() {
		return fd
	}
	ctx := max(opts.Context, 0)

	entries := make([]entry, 0, r.LeftLines+r.RightLines)
	var changes []int
	for _, l := range r.Lines {
		switch l.Kind {
		case Both:
			for i := 0; i < l.Left.Len(); i++ {
				entries = append(entries, entry{kind: Both, left: l.Left.Start + i, right: l.Right.Start + i})
			}
		case Left:
			for i := 0; i < l.Left.Len(); i++ {
				changes = append(changes, len(entries))
				entries = append(entries, entry{kind: Left, left: l.Left.Start + i, right: l.Right.Start})
			}
		case Right:
			for i := 0; i < l.Right.Len(); i++ {
				changes = append(changes, len(entries))
				entries = append(entries, entry{kind: Right, left: l.Left.Start, right: l.Right.Start + i})
			}
		}
	}

	for i := 0; i < len(changes); {
		first, last := changes[i], changes[i]
		i++
		// Merge changes whose gap fits inside the shared context.
		for i < len(changes) && changes[i]-last-1 <= 2*ctx {
			last = changes[i]
			i++
		}
		start := max(first-ctx, 0)
		end := min(last+ctx+1, len(entries))
		fd.Hunks = append(fd.Hunks, buildHunk(left, right, entries[start:end]))
	}
	return fd
}

func buildHunk(left, right []string, entries []entry) *sgdiff.Hunk {
	var body bytes.Buffer
	var origLines, newLines int32
	for _, e := range entries {
		switch e.kind {
		case Both:
			writeBodyLine(&body, ' ', left[e.left])
			origLines++
			newLines++
		case Left:
			writeBodyLine(&body, '-', left[e.left])
			origLines++
		case Right:
			writeBodyLine(&body, '+', right[e.right])
			newLines++
		}
	}

	// Empty sides point at the line before the hunk.
	origStart := int32(entries[0].left)
	if origLines > 0 {
		origStart++
	}
	newStart := int32(entries[0].right)
	if newLines > 0 {
		newStart++
	}

	return &sgdiff.Hunk{
		OrigStartLine: origStart,
		OrigLines:     origLines,
		NewStartLine:  newStart,
		NewLines:      newLines,
		Body:          body.Bytes(),
	}
}

func writeBodyLine(buf *bytes.Buffer, prefix byte, line string) {
	buf.WriteByte(prefix)
	buf.WriteString(strings.TrimRight(line, "\r\n"))
	buf.WriteByte('\n')
}

// Unified renders a result in unified diff format. It returns nil when the
// result has no changes.
func Unified(left, right []string, r *Result, opts UnifiedOptions) ([]byte, error) {
	if !r.HasChanges() {
		return nil, nil
	}
	return sgdiff.PrintFileDiff(FileDiff(left, right, r, opts))
}
