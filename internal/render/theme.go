package render

import "github.com/gdamore/tcell/v2"

// Theme holds the styles a viewer draws with.
type Theme struct {
	Text    tcell.Style
	Removed tcell.Style
	Added   tcell.Style
	Blank   tcell.Style
	Gutter  tcell.Style
	Fold    tcell.Style
	Header  tcell.Style
	Divider tcell.Style
}

// DefaultTheme returns the built-in dark theme.
func DefaultTheme() Theme {
	base := tcell.StyleDefault
	return Theme{
		Text:    base,
		Removed: base.Background(tcell.NewRGBColor(0x4b, 0x1d, 0x1d)),
		Added:   base.Background(tcell.NewRGBColor(0x1d, 0x3b, 0x22)),
		Blank:   base.Foreground(tcell.ColorGray),
		Gutter:  base.Foreground(tcell.ColorGray),
		Fold:    base.Foreground(tcell.ColorGray).Italic(true),
		Header:  base.Reverse(true),
		Divider: base.Foreground(tcell.ColorGray),
	}
}

func (t Theme) cell(k CellKind) tcell.Style {
	switch k {
	case CellRemoved:
		return t.Removed
	case CellAdded:
		return t.Added
	case CellBlank:
		return t.Blank
	default:
		return t.Text
	}
}
