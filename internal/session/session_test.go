package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/livediff/internal/diffeditor"
	"github.com/dshills/livediff/internal/document"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.yaml")
	store := NewStore(path)

	pairings := []diffeditor.DiffEditorInfo{
		{LeftContent: document.History("/src/a.go", "HEAD~1"), RightContent: document.File("/src/a.go")},
		{LeftContent: document.Transient("notes"), RightContent: document.File("/src/b.go")},
	}
	require.NoError(t, store.Save(pairings))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")
	assert.Contains(t, string(data), "left_content:")
	assert.Contains(t, string(data), "ref: HEAD~1")

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, pairings, got)
}

func TestLoadMissingFile(t *testing.T) {
	got, err := NewStore(filepath.Join(t.TempDir(), "none.yaml")).Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "pairings: [\n"},
		{"unknown field", "version: 1\nwindows: []\n"},
		{"invalid descriptor", "version: 1\npairings:\n  - left_content: {kind: file}\n    right_content: {kind: transient}\n"},
		{"newer version", "version: 99\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))
			_, err := NewStore(path).Load()
			assert.Error(t, err)
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.yaml"))
	require.NoError(t, store.Save([]diffeditor.DiffEditorInfo{
		{LeftContent: document.File("/a"), RightContent: document.File("/b")},
	}))
	require.NoError(t, store.Save(nil))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}
