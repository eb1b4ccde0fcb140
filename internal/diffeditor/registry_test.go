package diffeditor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/livediff/internal/document"
)

func TestInfoReportsEachSide(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	rt := startRuntime(t)
	docs := document.NewManager()
	left, err := docs.Open(context.Background(), document.History(path, "HEAD"))
	require.NoError(t, err)
	right, err := docs.Open(context.Background(), document.File(path))
	require.NoError(t, err)

	de := New(rt.NewScope(), &capturePool{}, left, right)
	info := de.Info()
	assert.Equal(t, document.KindHistory, info.LeftContent.Kind)
	assert.Equal(t, "HEAD", info.LeftContent.Ref)
	assert.Equal(t, document.File(path), info.RightContent)

	empty := New(rt.NewScope(), &capturePool{}, nil, right)
	assert.Equal(t, document.Transient(""), empty.Info().LeftContent)
}

func TestOpenRestoresPairing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))

	rt := startRuntime(t)
	pool := &capturePool{}
	docs := document.NewManager(document.WithHistorySource(document.HistoryFunc(
		func(ctx context.Context, p, ref string) (string, error) { return "a\n", nil },
	)))

	info := DiffEditorInfo{
		LeftContent:  document.History(path, "HEAD"),
		RightContent: document.File(path),
	}
	de, err := Open(context.Background(), rt.NewScope(), docs, pool, info)
	require.NoError(t, err)
	assert.Equal(t, info, de.Info())

	require.Eventually(t, func() bool {
		_ = rt.Flush(context.Background())
		return pool.pending() > 0
	}, time.Second, 5*time.Millisecond)
	jobs := pool.take(t, pool.pending())
	complete(t, rt, jobs[len(jobs)-1])

	d, ok := de.Right().View().Diff()
	require.True(t, ok)
	assert.Equal(t, 1, d.Changes.Stats().Added)
}

func TestOpenRejectsInvalidDescriptor(t *testing.T) {
	rt := startRuntime(t)
	_, err := Open(context.Background(), rt.NewScope(), document.NewManager(), &capturePool{}, DiffEditorInfo{
		LeftContent:  document.Descriptor{Kind: document.KindFile},
		RightContent: document.Transient(""),
	})
	assert.ErrorIs(t, err, document.ErrInvalidDescriptor)
}

func TestCopyIsIndependent(t *testing.T) {
	f := newFixture(t, "a\n", "b\n")
	f.pool.take(t, 1)

	cp := f.de.Copy()
	flush(t, f.rt)
	assert.NotEqual(t, f.de.ID(), cp.ID())
	assert.Equal(t, f.de.TabID(), cp.TabID())
	assert.Same(t, f.left, cp.Left().Document())
	assert.NotEqual(t, f.de.Left().ID(), cp.Left().ID())
	assert.Equal(t, f.de.Info(), cp.Info())

	complete(t, f.rt, f.pool.take(t, 1)[0])
	_, ok := cp.Left().View().Diff()
	assert.True(t, ok)
	_, ok = f.de.Left().View().Diff()
	assert.False(t, ok, "the original has its own view slots")

	f.de.Dispose()
	assert.True(t, cp.Alive())
}

func TestRegistry(t *testing.T) {
	rt := startRuntime(t)
	reg := NewRegistry()
	root := rt.NewScope()

	a := New(root, &capturePool{}, nil, nil)
	b := New(root, &capturePool{}, nil, nil)
	require.NoError(t, reg.Insert(a))
	require.NoError(t, reg.Insert(b))
	assert.ErrorIs(t, reg.Insert(a), ErrDuplicate)

	got, ok := reg.Get(b.ID())
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, []*DiffEditor{a, b}, reg.All())
	assert.Len(t, reg.Infos(), 2)

	require.NoError(t, reg.Remove(a.ID()))
	assert.False(t, a.Alive())
	assert.ErrorIs(t, reg.Remove(a.ID()), ErrNotFound)
	assert.ErrorIs(t, reg.Remove(uuid.New()), ErrNotFound)
	assert.Equal(t, 1, reg.Len())

	reg.Close()
	assert.False(t, b.Alive())
	assert.Zero(t, reg.Len())
}
