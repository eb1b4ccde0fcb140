package diff

// builder turns an edit script into canonical blocks. Removals and
// additions between two unchanged runs are held back and flushed as one
// Left block followed by one Right block.
type builder struct {
	lines        []Line
	left, right  int
	pendingLeft  int
	pendingRight int
}

func (b *builder) equal(count int) {
	if count <= 0 {
		return
	}
	b.flush()
	b.push(Both, count, count)
}

func (b *builder) remove(count int) {
	b.pendingLeft += count
}

func (b *builder) add(count int) {
	b.pendingRight += count
}

func (b *builder) apply(ops []editOp) {
	for _, op := range ops {
		switch op {
		case opEqual:
			b.equal(1)
		case opDelete:
			b.remove(1)
		case opInsert:
			b.add(1)
		}
	}
}

func (b *builder) flush() {
	if b.pendingLeft > 0 {
		b.push(Left, b.pendingLeft, 0)
	}
	if b.pendingRight > 0 {
		b.push(Right, 0, b.pendingRight)
	}
	b.pendingLeft, b.pendingRight = 0, 0
}

func (b *builder) push(kind Kind, nl, nr int) {
	lr := LineRange{Start: b.left, End: b.left + nl}
	rr := LineRange{Start: b.right, End: b.right + nr}
	b.left += nl
	b.right += nr

	if n := len(b.lines); n > 0 && b.lines[n-1].Kind == kind {
		b.lines[n-1].Left.End = lr.End
		b.lines[n-1].Right.End = rr.End
		return
	}
	b.lines = append(b.lines, Line{Kind: kind, Left: lr, Right: rr})
}

func (b *builder) result(context int) *Result {
	b.flush()
	r := &Result{
		Lines:      b.lines,
		LeftLines:  b.left,
		RightLines: b.right,
	}
	if r.Lines == nil {
		r.Lines = []Line{}
	}
	if r.HasChanges() {
		fold(r, context)
	}
	return r
}

// fold marks the part of each unchanged block that lies further than
// context lines from every change.
func fold(r *Result, context int) {
	last := len(r.Lines) - 1
	for i := range r.Lines {
		l := &r.Lines[i]
		if l.Kind != Both {
			continue
		}
		before, after := 0, 0
		if i > 0 {
			before = context
		}
		if i < last {
			after = context
		}
		if n := l.Left.Len(); n > before+after {
			l.Skip = &LineRange{Start: before, End: n - after}
		}
	}
}
