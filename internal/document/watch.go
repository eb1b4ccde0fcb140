package document

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchFiles reloads open file documents when they change on disk. It
// blocks until ctx is done. Directories are watched rather than files so
// that saves done by rename are seen.
func (m *Manager) WatchFiles(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	m.watchMu.Lock()
	if m.watcher != nil {
		m.watchMu.Unlock()
		_ = w.Close()
		return ErrAlreadyWatching
	}
	m.watcher = w
	for dir := range m.dirs {
		if err := w.Add(dir); err != nil {
			m.logger.Warn("watch directory failed", zap.String("dir", dir), zap.Error(err))
		}
	}
	m.watchMu.Unlock()

	defer func() {
		m.watchMu.Lock()
		m.watcher = nil
		m.watchMu.Unlock()
		_ = w.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			m.handleEvent(ev)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// Watching reports whether WatchFiles is running.
func (m *Manager) Watching() bool {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	return m.watcher != nil
}

func (m *Manager) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	doc, ok := m.Lookup(ev.Name)
	if !ok {
		return
	}
	// The file may be mid-save or gone; the next event retries.
	if err := m.Reload(doc); err != nil {
		m.logger.Debug("reload failed", zap.String("path", ev.Name), zap.Error(err))
		return
	}
	m.logger.Debug("reloaded",
		zap.String("path", ev.Name),
		zap.Uint64("revision", doc.Buffer().Revision()),
	)
}

// watchFile starts watching path's directory. Called with m.mu held.
func (m *Manager) watchFile(path string) {
	dir := filepath.Dir(path)

	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	m.dirs[dir]++
	if m.dirs[dir] == 1 && m.watcher != nil {
		if err := m.watcher.Add(dir); err != nil {
			m.logger.Warn("watch directory failed", zap.String("dir", dir), zap.Error(err))
		}
	}
}

// unwatchFile stops watching path's directory once no open file needs it.
// Called with m.mu held.
func (m *Manager) unwatchFile(path string) {
	dir := filepath.Dir(path)

	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	m.dirs[dir]--
	if m.dirs[dir] > 0 {
		return
	}
	delete(m.dirs, dir)
	if m.watcher != nil {
		_ = m.watcher.Remove(dir)
	}
}
