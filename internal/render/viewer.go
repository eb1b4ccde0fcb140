package render

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/dshills/livediff/internal/editor"
	"github.com/dshills/livediff/internal/reactive"
)

// Viewer draws a pair of editors onto a screen and redraws whenever either
// side's content or view changes. The caller owns the screen's Init and
// Fini.
type Viewer struct {
	screen      tcell.Screen
	left, right *editor.Editor
	theme       Theme
	tabWidth    int
	logger      *zap.Logger

	mu   sync.Mutex
	top  int
	rows int

	dirty chan struct{}
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithTheme sets the styles.
func WithTheme(t Theme) ViewerOption {
	return func(v *Viewer) {
		v.theme = t
	}
}

// WithTabWidth sets the tab stop width.
func WithTabWidth(n int) ViewerOption {
	return func(v *Viewer) {
		if n > 0 {
			v.tabWidth = n
		}
	}
}

// WithLogger sets the viewer's logger.
func WithLogger(l *zap.Logger) ViewerOption {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewViewer creates a viewer for left and right on screen.
func NewViewer(screen tcell.Screen, left, right *editor.Editor, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		screen:   screen,
		left:     left,
		right:    right,
		theme:    DefaultTheme(),
		tabWidth: 4,
		logger:   zap.NewNop(),
		dirty:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Invalidate schedules a redraw. It never blocks.
func (v *Viewer) Invalidate() {
	select {
	case v.dirty <- struct{}{}:
	default:
	}
}

// Top returns the first visible row.
func (v *Viewer) Top() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.top
}

// Scroll moves the view by delta rows.
func (v *Viewer) Scroll(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top += delta
	v.clampLocked()
}

func (v *Viewer) clampLocked() {
	_, h := v.screen.Size()
	maxTop := max(0, v.rows-(h-1))
	v.top = min(max(v.top, 0), maxTop)
}

// Run redraws on changes and handles keys until ctx is done or the user
// quits with q, Escape or Ctrl-C.
func (v *Viewer) Run(ctx context.Context) error {
	for _, src := range []reactive.Source{v.left, v.right, v.left.View(), v.right.View()} {
		cancel := src.Subscribe(v.Invalidate)
		defer cancel()
	}

	quit := make(chan struct{})
	defer close(quit)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			v.logger.Debug("viewer stopped", zap.Error(ctx.Err()))
			return nil
		case <-v.dirty:
			v.Draw()
		case ev := <-events:
			if v.handle(ev) {
				v.logger.Debug("viewer closed by user")
				return nil
			}
			v.Draw()
		}
	}
}

// handle applies one event and reports whether the viewer should exit.
func (v *Viewer) handle(ev tcell.Event) bool {
	_, h := v.screen.Size()
	page := max(1, h-2)

	switch e := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		v.Scroll(0)
	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyUp:
			v.Scroll(-1)
		case tcell.KeyDown:
			v.Scroll(1)
		case tcell.KeyPgUp:
			v.Scroll(-page)
		case tcell.KeyPgDn:
			v.Scroll(page)
		case tcell.KeyHome:
			v.Scroll(-v.rowCount())
		case tcell.KeyEnd:
			v.Scroll(v.rowCount())
		case tcell.KeyRune:
			switch e.Rune() {
			case 'q':
				return true
			case 'k':
				v.Scroll(-1)
			case 'j':
				v.Scroll(1)
			case 'g':
				v.Scroll(-v.rowCount())
			case 'G':
				v.Scroll(v.rowCount())
			}
		}
	}
	return false
}

func (v *Viewer) rowCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rows
}

// Draw renders the current state and shows it.
func (v *Viewer) Draw() {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.screen
	s.Clear()
	w, h := s.Size()
	if w < 3 || h < 1 {
		s.Show()
		return
	}

	leftLines, rightLines := lines(v.left), lines(v.right)
	var rows []Row
	status := "waiting for diff"
	if d, ok := v.left.View().Diff(); ok && d.Changes != nil {
		rows = Rows(d.Changes)
		st := d.Changes.Stats()
		status = fmt.Sprintf("-%d +%d", st.Removed, st.Added)
	} else {
		rows = plainRows(len(leftLines), len(rightLines))
	}
	v.rows = len(rows)
	v.clampLocked()

	leftW := (w - 1) / 2
	rightX := leftW + 1
	rightW := w - rightX
	gw := gutterWidth(max(len(leftLines), len(rightLines)))

	v.drawText(0, 0, leftW, title(v.left), v.theme.Header)
	v.drawText(rightX, 0, rightW, title(v.right)+"  "+status, v.theme.Header)
	s.SetContent(leftW, 0, ' ', nil, v.theme.Header)

	for y := 1; y < h; y++ {
		s.SetContent(leftW, y, '│', nil, v.theme.Divider)
		i := v.top + y - 1
		if i >= len(rows) {
			continue
		}
		row := rows[i]
		if row.Fold > 0 {
			fold := fmt.Sprintf("⋯ %d unchanged lines", row.Fold)
			v.drawText(0, y, leftW, fold, v.theme.Fold)
			v.drawText(rightX, y, rightW, fold, v.theme.Fold)
			continue
		}
		v.drawCell(0, y, leftW, gw, row.Left, leftLines)
		v.drawCell(rightX, y, rightW, gw, row.Right, rightLines)
	}
	s.Show()
}

func (v *Viewer) drawCell(x, y, width, gw int, c Cell, lines []string) {
	gutter := strings.Repeat(" ", gw)
	if c.Line >= 0 {
		marker := ' '
		switch c.Kind {
		case CellRemoved:
			marker = '-'
		case CellAdded:
			marker = '+'
		}
		gutter = fmt.Sprintf("%*d%c", gw-1, c.Line+1, marker)
	}
	n := v.drawText(x, y, min(gw, width), gutter, v.theme.Gutter)

	text := ""
	if c.Line >= 0 && c.Line < len(lines) {
		text = strings.TrimRight(lines[c.Line], "\r\n")
	}
	v.drawText(x+n, y, width-n, text, v.theme.cell(c.Kind))
}

// drawText writes text clipped to width cells, expanding tabs, and pads
// the rest with the style's background. It returns the cells used.
func (v *Viewer) drawText(x, y, width int, text string, style tcell.Style) int {
	col := 0
	for _, r := range text {
		if r == '\t' {
			spaces := v.tabWidth - col%v.tabWidth
			for i := 0; i < spaces && col < width; i++ {
				v.screen.SetContent(x+col, y, ' ', nil, style)
				col++
			}
			continue
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > width {
			break
		}
		v.screen.SetContent(x+col, y, r, nil, style)
		col += rw
	}
	used := col
	for ; col < width; col++ {
		v.screen.SetContent(x+col, y, ' ', nil, style)
	}
	return used
}

func lines(e *editor.Editor) []string {
	doc := e.Document()
	if doc == nil {
		return nil
	}
	return doc.Buffer().Snapshot().DiffLines()
}

func title(e *editor.Editor) string {
	doc := e.Document()
	if doc == nil {
		return "(empty)"
	}
	if !doc.Loaded() {
		return doc.Name() + " (loading)"
	}
	return doc.Name()
}

func gutterWidth(n int) int {
	return len(fmt.Sprint(max(n, 1))) + 1
}
