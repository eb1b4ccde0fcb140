package document

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/livediff/internal/buffer"
)

// Document is an open piece of content backed by a buffer.
type Document struct {
	id   uuid.UUID
	desc Descriptor
	name string
	buf  *buffer.Buffer

	loaded atomic.Bool

	mu      sync.Mutex
	onLoad  map[uint64]func()
	nextSub uint64
}

func newDocument(desc Descriptor, name string, text string) *Document {
	id := uuid.New()
	return &Document{
		id:   id,
		desc: desc,
		name: name,
		buf: buffer.NewBufferFromString(text,
			buffer.WithIdentity(desc.identity(id.String())),
			buffer.WithRawLineEndings(),
		),
		onLoad: make(map[uint64]func()),
	}
}

// ID returns the document's unique ID.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Descriptor returns the descriptor the document was opened from.
func (d *Document) Descriptor() Descriptor {
	return d.desc
}

// Name returns the display name.
func (d *Document) Name() string {
	return d.name
}

// Buffer returns the document's buffer.
func (d *Document) Buffer() *buffer.Buffer {
	return d.buf
}

// Identity returns the buffer identity.
func (d *Document) Identity() buffer.Identity {
	return d.buf.Identity()
}

// Loaded reports whether the content has been resolved.
func (d *Document) Loaded() bool {
	return d.loaded.Load()
}

// IsScratch returns true for transient documents.
func (d *Document) IsScratch() bool {
	return d.desc.Kind == KindTransient
}

// Subscribe registers fn to run when the buffer revision changes or the
// document finishes loading.
func (d *Document) Subscribe(fn func()) (cancel func()) {
	cancelBuf := d.buf.Subscribe(fn)

	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.onLoad[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelBuf()
			d.mu.Lock()
			delete(d.onLoad, id)
			d.mu.Unlock()
		})
	}
}

// finishLoad installs text and marks the document loaded.
func (d *Document) finishLoad(text string) {
	d.buf.SetText(text)
	if d.loaded.Swap(true) {
		return
	}

	d.mu.Lock()
	fns := make([]func(), 0, len(d.onLoad))
	for _, fn := range d.onLoad {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
