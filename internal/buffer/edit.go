package buffer

// Range is a half-open byte range [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

func (r Range) valid(size ByteOffset) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= size
}

// Edit replaces Range with NewText. An empty range inserts.
type Edit struct {
	Range   Range
	NewText string
}

// NewInsert returns an edit inserting text at offset.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewText: text}
}

// NewDelete returns an edit removing [start, end).
func NewDelete(start, end ByteOffset) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}
