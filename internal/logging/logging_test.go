package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/livediff/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livediff.log")
	l, err := New(config.LogConfig{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	l.Named("gate").Debug("discarded stale result")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"gate"`)
	assert.Contains(t, string(data), "discarded stale result")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty", Format: "console"})
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.NotNil(t, L(context.Background()), "missing loggers fall back to a no-op")

	l, err := New(config.LogConfig{Level: "info", Format: "console"})
	require.NoError(t, err)
	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, L(ctx))
}
