// Package editor models one pane: a document plus the view kind it shows.
package editor

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/livediff/internal/buffer"
	"github.com/dshills/livediff/internal/document"
	"github.com/dshills/livediff/internal/reactive"
	"github.com/dshills/livediff/internal/view"
)

// Key is the change-detection input for one side: which content the editor
// shows and how far it has been edited.
type Key struct {
	Identity  buffer.Identity
	Revision  buffer.Revision
	Available bool
}

// Editor is one side of a diff pairing.
type Editor struct {
	id    uuid.UUID
	scope *reactive.Scope
	doc   *reactive.Signal[*document.Document]
	view  *view.Slot

	mu        sync.Mutex
	detachDoc func()
	changes   reactive.Notifier
}

// New creates an editor showing doc. doc may be nil for a side that has
// nothing to show yet. The editor detaches from its document when scope
// is disposed.
func New(scope *reactive.Scope, doc *document.Document) *Editor {
	rt := scope.Runtime()
	e := &Editor{
		id:    uuid.New(),
		scope: scope,
		doc:   reactive.NewSignal(rt, doc),
		view:  view.NewSlot(rt),
	}
	e.attach(doc)
	scope.OnDispose(e.detach)
	return e
}

// ID returns the editor's unique ID.
func (e *Editor) ID() uuid.UUID {
	return e.id
}

// Document returns the document currently shown, or nil.
func (e *Editor) Document() *document.Document {
	return e.doc.Get()
}

// View returns the editor's view slot.
func (e *Editor) View() *view.Slot {
	return e.view
}

// Available reports whether the editor has loaded content to diff.
func (e *Editor) Available() bool {
	doc := e.doc.Get()
	return doc != nil && doc.Loaded()
}

// Key returns the current change-detection key.
func (e *Editor) Key() Key {
	doc := e.doc.Get()
	if doc == nil {
		return Key{}
	}
	return Key{
		Identity:  doc.Identity(),
		Revision:  doc.Buffer().Revision(),
		Available: doc.Loaded(),
	}
}

// SetDocument swaps the document the editor shows.
func (e *Editor) SetDocument(doc *document.Document) {
	if !e.scope.Alive() {
		return
	}
	e.mu.Lock()
	if e.detachDoc != nil {
		e.detachDoc()
	}
	e.attachLocked(doc)
	e.mu.Unlock()

	e.doc.Set(doc)
	e.changes.Notify()
}

// Subscribe implements reactive.Source. fn fires when the document is
// swapped, finishes loading or its buffer revision changes.
func (e *Editor) Subscribe(fn func()) (cancel func()) {
	return e.changes.Subscribe(fn)
}

// Copy creates a new editor in scope showing the same document with a
// fresh view.
func (e *Editor) Copy(scope *reactive.Scope) *Editor {
	return New(scope, e.Document())
}

func (e *Editor) attach(doc *document.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attachLocked(doc)
}

func (e *Editor) attachLocked(doc *document.Document) {
	e.detachDoc = nil
	if doc != nil {
		e.detachDoc = doc.Subscribe(e.changes.Notify)
	}
}

func (e *Editor) detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detachDoc != nil {
		e.detachDoc()
		e.detachDoc = nil
	}
}
