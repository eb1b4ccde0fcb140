package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HistorySource resolves historical file content, e.g. from version control.
type HistorySource interface {
	Content(ctx context.Context, path, ref string) (string, error)
}

// HistoryFunc adapts a function to HistorySource.
type HistoryFunc func(ctx context.Context, path, ref string) (string, error)

// Content calls f.
func (f HistoryFunc) Content(ctx context.Context, path, ref string) (string, error) {
	return f(ctx, path, ref)
}

// Manager manages all open documents.
type Manager struct {
	logger  *zap.Logger
	history HistorySource

	mu        sync.RWMutex
	documents map[uuid.UUID]*Document
	files     map[string]*Document // abs path -> document
	order     []uuid.UUID
	counter   int // for naming scratch buffers

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	dirs    map[string]int // watched dir -> open file count
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithHistorySource sets the resolver for history descriptors.
func WithHistorySource(h HistorySource) ManagerOption {
	return func(m *Manager) {
		m.history = h
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a new document manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		logger:    zap.NewNop(),
		documents: make(map[uuid.UUID]*Document),
		files:     make(map[string]*Document),
		dirs:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open resolves desc into a loaded document. File documents already open
// are returned as is.
func (m *Manager) Open(ctx context.Context, desc Descriptor) (*Document, error) {
	doc, fresh, err := m.create(desc)
	if err != nil || !fresh {
		return doc, err
	}

	text, err := m.resolve(ctx, desc)
	if err != nil {
		m.forget(doc)
		return nil, err
	}
	doc.finishLoad(text)
	return doc, nil
}

// OpenAsync returns a document immediately and resolves its content in the
// background. Until then the document reports Loaded() == false. A file
// that fails to load stays unloaded.
func (m *Manager) OpenAsync(ctx context.Context, desc Descriptor) (*Document, error) {
	doc, fresh, err := m.create(desc)
	if err != nil || !fresh {
		return doc, err
	}

	go func() {
		text, err := m.resolve(ctx, desc)
		if err != nil {
			m.logger.Warn("document load failed",
				zap.Stringer("descriptor", desc),
				zap.Error(err),
			)
			return
		}
		doc.finishLoad(text)
	}()
	return doc, nil
}

// create registers a document for desc. fresh is false when an open file
// document was reused.
func (m *Manager) create(desc Descriptor) (doc *Document, fresh bool, err error) {
	if err := desc.Validate(); err != nil {
		return nil, false, err
	}
	if desc.Path != "" {
		abs, err := filepath.Abs(desc.Path)
		if err != nil {
			return nil, false, fmt.Errorf("resolve %s: %w", desc.Path, err)
		}
		desc.Path = abs
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if desc.Kind == KindFile {
		if existing, ok := m.files[desc.Path]; ok {
			return existing, false, nil
		}
	}

	name := desc.displayName()
	if desc.Kind == KindTransient && desc.Name == "" {
		m.counter++
		if m.counter > 1 {
			name = "Untitled-" + strconv.Itoa(m.counter)
		}
	}

	doc = newDocument(desc, name, "")
	m.documents[doc.id] = doc
	m.order = append(m.order, doc.id)
	if desc.Kind == KindFile {
		m.files[desc.Path] = doc
		m.watchFile(desc.Path)
	}
	return doc, true, nil
}

// resolve fetches the content desc names.
func (m *Manager) resolve(ctx context.Context, desc Descriptor) (string, error) {
	switch desc.Kind {
	case KindFile:
		path, err := filepath.Abs(desc.Path)
		if err != nil {
			return "", err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		return string(content), nil

	case KindHistory:
		// Unresolvable history falls back to an empty buffer.
		if m.history == nil {
			m.logger.Debug("no history source, using empty buffer", zap.Stringer("descriptor", desc))
			return "", nil
		}
		text, err := m.history.Content(ctx, desc.Path, desc.Ref)
		if err != nil {
			m.logger.Warn("history lookup failed, using empty buffer",
				zap.Stringer("descriptor", desc),
				zap.Error(err),
			)
			return "", nil
		}
		return text, nil

	default:
		return "", nil
	}
}

// forget removes a document that failed to open.
func (m *Manager) forget(doc *Document) {
	_ = m.Close(doc.id)
}

// Close closes a document by ID.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.documents[id]
	if !ok {
		return ErrDocumentNotFound
	}
	delete(m.documents, id)
	for i, other := range m.order {
		if other == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if doc.desc.Kind == KindFile {
		abs, _ := filepath.Abs(doc.desc.Path)
		delete(m.files, abs)
		m.unwatchFile(abs)
	}
	return nil
}

// Get returns a document by ID.
func (m *Manager) Get(id uuid.UUID) (*Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	return doc, ok
}

// Lookup returns the open file document for path.
func (m *Manager) Lookup(path string) (*Document, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.files[abs]
	return doc, ok
}

// All returns all open documents in open order.
func (m *Manager) All() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.order))
	for _, id := range m.order {
		if doc, ok := m.documents[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// Count returns the number of open documents.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents)
}

// Reload re-reads a file document from disk. Unchanged content keeps the
// revision.
func (m *Manager) Reload(doc *Document) error {
	if doc.desc.Kind != KindFile {
		return nil
	}
	text, err := m.resolve(context.Background(), doc.desc)
	if err != nil {
		return err
	}
	doc.finishLoad(text)
	return nil
}
