package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/livediff/internal/config"
	"github.com/dshills/livediff/internal/diffeditor"
	"github.com/dshills/livediff/internal/document"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newApp(t *testing.T, modify func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	if modify != nil {
		modify(&cfg)
	}
	app, err := New(Options{Config: &cfg, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = app.Shutdown(ctx)
	})
	return app
}

func waitForDiff(t *testing.T, de *diffeditor.DiffEditor, leftLines int) {
	t.Helper()
	require.Eventually(t, func() bool {
		d, ok := de.Left().View().Diff()
		return ok && d.Changes.LeftLines == leftLines
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOpenPairPublishesDiff(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.txt", "a\nb\nc\n")
	right := writeFile(t, dir, "right.txt", "a\nx\nc\n")

	app := newApp(t, func(c *config.Config) {
		c.Metrics.Enabled = true
	})
	de, err := app.OpenPair(context.Background(), diffeditor.DiffEditorInfo{
		LeftContent:  document.File(left),
		RightContent: document.File(right),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, app.Pairings().Len())

	waitForDiff(t, de, 3)
	d, _ := de.Right().View().Diff()
	assert.True(t, d.IsRight)
	assert.Equal(t, 1, d.Changes.Stats().Removed)

	n, err := testutil.GatherAndCount(app.Gatherer(), "livediff_diff_results_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	require.NoError(t, app.ClosePair(de))
	assert.False(t, de.Alive())
	assert.Zero(t, app.Pairings().Len())
}

func TestOpenPairRejectsInvalidDescriptor(t *testing.T) {
	app := newApp(t, nil)
	_, err := app.OpenPair(context.Background(), diffeditor.DiffEditorInfo{
		LeftContent:  document.Descriptor{Kind: "remote"},
		RightContent: document.Transient(""),
	})
	assert.ErrorIs(t, err, document.ErrInvalidDescriptor)
	assert.Zero(t, app.Pairings().Len())
}

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.txt", "one\n")
	right := writeFile(t, dir, "right.txt", "two\n")
	sessionPath := filepath.Join(dir, "session.yaml")

	cfg := config.Default()
	cfg.Session.Path = sessionPath
	first, err := New(Options{Config: &cfg, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	info := diffeditor.DiffEditorInfo{
		LeftContent:  document.File(left),
		RightContent: document.File(right),
	}
	_, err = first.OpenPair(context.Background(), info)
	require.NoError(t, err)
	require.NoError(t, first.Shutdown(context.Background()))
	assert.FileExists(t, sessionPath)

	second := newApp(t, func(c *config.Config) { c.Session.Path = sessionPath })
	n, err := second.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	restored := second.Pairings().All()
	require.Len(t, restored, 1)
	assert.Equal(t, info, restored[0].Info())
	waitForDiff(t, restored[0], 1)
}

func TestSessionDisabled(t *testing.T) {
	app := newApp(t, nil)
	_, err := app.RestoreSession(context.Background())
	assert.ErrorIs(t, err, ErrSessionDisabled)
	assert.ErrorIs(t, app.SaveSession(), ErrSessionDisabled)
}

func TestWatchFilesRediffs(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.txt", "a\n")
	right := writeFile(t, dir, "right.txt", "a\n")

	app := newApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = app.WatchFiles(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	de, err := app.OpenPair(ctx, diffeditor.DiffEditorInfo{
		LeftContent:  document.File(left),
		RightContent: document.File(right),
	})
	require.NoError(t, err)
	waitForDiff(t, de, 1)

	require.Eventually(t, app.Documents().Watching, time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(left, []byte("a\nb\n"), 0o644))
	waitForDiff(t, de, 2)

	d, _ := de.Left().View().Diff()
	assert.Equal(t, 1, d.Changes.Stats().Removed)
}

func TestShutdown(t *testing.T) {
	cfg := config.Default()
	app, err := New(Options{Config: &cfg, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	assert.True(t, app.IsRunning())

	require.NoError(t, app.Shutdown(context.Background()))
	assert.False(t, app.IsRunning())
	assert.ErrorIs(t, app.Shutdown(context.Background()), ErrNotRunning)

	_, err = app.OpenPair(context.Background(), diffeditor.DiffEditorInfo{
		LeftContent:  document.Transient(""),
		RightContent: document.Transient(""),
	})
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Worker.Workers = 0
	_, err := New(Options{Config: &cfg})

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "config", initErr.Component)
	assert.ErrorIs(t, err, config.ErrValidationFailed)
}

func TestMetricsDisabledByDefault(t *testing.T) {
	app := newApp(t, nil)
	assert.Nil(t, app.Gatherer())
}
