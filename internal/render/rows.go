package render

import "github.com/dshills/livediff/internal/diff"

// CellKind classifies one side of a row.
type CellKind uint8

const (
	// CellBlank is filler opposite an added or removed line.
	CellBlank CellKind = iota
	// CellSame is an unchanged line.
	CellSame
	// CellRemoved is a line only on the left.
	CellRemoved
	// CellAdded is a line only on the right.
	CellAdded
)

// Cell is one side of a row. Line is the zero-based line number in that
// side's buffer, or -1 for blank cells.
type Cell struct {
	Kind CellKind
	Line int
}

// Row is one screen row. Fold is the number of unchanged lines the row
// stands in for; the cells of a fold row are blank.
type Row struct {
	Left  Cell
	Right Cell
	Fold  int
}

var blank = Cell{Kind: CellBlank, Line: -1}

// Rows aligns r into side-by-side rows. A nil result yields nil.
func Rows(r *diff.Result) []Row {
	if r == nil {
		return nil
	}

	var rows []Row
	lines := r.Lines
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		switch l.Kind {
		case diff.Both:
			rows = appendBoth(rows, l)
		case diff.Left:
			var added diff.LineRange
			if i+1 < len(lines) && lines[i+1].Kind == diff.Right {
				added = lines[i+1].Right
				i++
			}
			rows = appendChange(rows, l.Left, added)
		case diff.Right:
			rows = appendChange(rows, diff.LineRange{}, l.Right)
		}
	}
	return rows
}

func appendBoth(rows []Row, l diff.Line) []Row {
	n := l.Left.Len()
	for off := 0; off < n; off++ {
		if l.Skip != nil && off == l.Skip.Start {
			rows = append(rows, Row{Left: blank, Right: blank, Fold: l.Skip.Len()})
			off = l.Skip.End - 1
			continue
		}
		rows = append(rows, Row{
			Left:  Cell{Kind: CellSame, Line: l.Left.Start + off},
			Right: Cell{Kind: CellSame, Line: l.Right.Start + off},
		})
	}
	return rows
}

// appendChange pairs removed lines with the added lines that follow them.
func appendChange(rows []Row, removed, added diff.LineRange) []Row {
	n := max(removed.Len(), added.Len())
	for off := 0; off < n; off++ {
		row := Row{Left: blank, Right: blank}
		if off < removed.Len() {
			row.Left = Cell{Kind: CellRemoved, Line: removed.Start + off}
		}
		if off < added.Len() {
			row.Right = Cell{Kind: CellAdded, Line: added.Start + off}
		}
		rows = append(rows, row)
	}
	return rows
}

// plainRows shows two texts without a diff, line for line.
func plainRows(left, right int) []Row {
	n := max(left, right)
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{Left: blank, Right: blank}
		if i < left {
			rows[i].Left = Cell{Kind: CellSame, Line: i}
		}
		if i < right {
			rows[i].Right = Cell{Kind: CellSame, Line: i}
		}
	}
	return rows
}
