package render

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/livediff/internal/diff"
	"github.com/dshills/livediff/internal/document"
	"github.com/dshills/livediff/internal/editor"
	"github.com/dshills/livediff/internal/reactive"
	"github.com/dshills/livediff/internal/view"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		b.WriteRune(r)
	}
	return b.String()
}

type pair struct {
	rt          *reactive.Runtime
	left, right *editor.Editor
}

func newPair(t *testing.T, left, right string) pair {
	t.Helper()
	rt := reactive.NewRuntime()
	require.NoError(t, rt.Start())
	t.Cleanup(func() { _ = rt.Stop(context.Background()) })

	docs := document.NewManager()
	open := func(text string) *document.Document {
		doc, err := docs.Open(context.Background(), document.Transient(""))
		require.NoError(t, err)
		doc.Buffer().SetText(text)
		return doc
	}
	scope := rt.NewScope()
	return pair{
		rt:    rt,
		left:  editor.New(scope, open(left)),
		right: editor.New(scope, open(right)),
	}
}

func (p pair) publish(t *testing.T) {
	t.Helper()
	r, ok := diff.ComputeStrings(
		p.left.Document().Buffer().Text(),
		p.right.Document().Buffer().Text(),
		diff.DefaultOptions(),
	)
	require.True(t, ok)
	p.left.View().Set(view.Diff{IsRight: false, Changes: r})
	p.right.View().Set(view.Diff{IsRight: true, Changes: r})
}

func TestViewerDrawsDiff(t *testing.T) {
	s := newScreen(t, 40, 6)
	p := newPair(t, "a\nb\nc\n", "a\nx\nc\n")
	p.publish(t)

	v := NewViewer(s, p.left, p.right)
	v.Draw()

	header := rowText(s, 0)
	assert.True(t, strings.HasPrefix(header, "Untitled"))
	assert.Contains(t, header, "Untitled-2  -1 +1")

	assert.Equal(t, "1 a"+strings.Repeat(" ", 16)+"│1 a"+strings.Repeat(" ", 17), rowText(s, 1))
	assert.Equal(t, "2-b"+strings.Repeat(" ", 16)+"│2+x"+strings.Repeat(" ", 17), rowText(s, 2))
	assert.True(t, strings.HasPrefix(rowText(s, 3), "3 c"))
	assert.Equal(t, strings.Repeat(" ", 19)+"│"+strings.Repeat(" ", 20), rowText(s, 4))
}

func TestViewerDrawsPlainBeforeFirstDiff(t *testing.T) {
	s := newScreen(t, 60, 4)
	p := newPair(t, "left\n", "right\nmore\n")

	NewViewer(s, p.left, p.right).Draw()
	assert.Contains(t, rowText(s, 0), "waiting for diff")
	assert.Contains(t, rowText(s, 1), "1 left")
	assert.Contains(t, rowText(s, 1), "1 right")
	assert.Contains(t, rowText(s, 2), "2 more")
}

func TestViewerExpandsTabsAndClips(t *testing.T) {
	s := newScreen(t, 21, 3)
	p := newPair(t, "\tx\n", "abcdefghijklmnop\n")

	NewViewer(s, p.left, p.right, WithTabWidth(2)).Draw()
	row := rowText(s, 1)
	assert.True(t, strings.HasPrefix(row, "1   x"), row)
	assert.True(t, strings.HasSuffix(row, "│1 abcdefgh"), row)
}

func TestViewerScrollClamps(t *testing.T) {
	s := newScreen(t, 40, 6)
	var text strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&text, "line %d\n", i)
	}
	p := newPair(t, text.String(), text.String())
	v := NewViewer(s, p.left, p.right)
	v.Draw()

	v.Scroll(100)
	assert.Equal(t, 15, v.Top())
	v.Draw()
	assert.Contains(t, rowText(s, 5), "line 19")

	v.Scroll(-100)
	assert.Zero(t, v.Top())
}

func TestViewerHandleKeys(t *testing.T) {
	s := newScreen(t, 40, 6)
	var text strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&text, "%d\n", i)
	}
	p := newPair(t, text.String(), text.String())
	v := NewViewer(s, p.left, p.right)
	v.Draw()

	assert.False(t, v.handle(tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone)))
	assert.Equal(t, 1, v.Top())
	assert.False(t, v.handle(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone)))
	assert.Equal(t, 5, v.Top())
	assert.False(t, v.handle(tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone)))
	assert.Zero(t, v.Top())
	assert.False(t, v.handle(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone)))
	assert.Equal(t, 15, v.Top())

	assert.True(t, v.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.True(t, v.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestViewerRedrawsOnPublish(t *testing.T) {
	s := newScreen(t, 40, 4)
	p := newPair(t, "a\n", "b\n")
	v := NewViewer(s, p.left, p.right)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	p.publish(t)
	require.Eventually(t, func() bool {
		return strings.Contains(rowText(s, 0), "-1 +1")
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("viewer did not stop")
	}
}
