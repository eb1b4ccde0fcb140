// Package view holds the per-editor view kind the diff engine publishes to.
package view

import (
	"github.com/dshills/livediff/internal/diff"
	"github.com/dshills/livediff/internal/reactive"
)

// Kind is how an editor presents its document.
type Kind interface {
	isKind()
}

// Normal is a plain editor view.
type Normal struct{}

// Diff is one side of a side-by-side diff. Both sides of a pairing hold the
// same Changes pointer.
type Diff struct {
	IsRight bool
	Changes *diff.Result
}

func (Normal) isKind() {}
func (Diff) isKind()   {}

// Slot is an editor's settable view kind.
type Slot struct {
	sig *reactive.Signal[Kind]
}

// NewSlot creates a slot showing Normal.
func NewSlot(rt *reactive.Runtime) *Slot {
	return &Slot{sig: reactive.NewSignal[Kind](rt, Normal{})}
}

// Get returns the current view kind.
func (s *Slot) Get() Kind {
	return s.sig.Get()
}

// Set replaces the view kind. Subscribers are notified on the runtime.
func (s *Slot) Set(k Kind) {
	s.sig.Set(k)
}

// Diff returns the current diff view, if the slot holds one.
func (s *Slot) Diff() (Diff, bool) {
	d, ok := s.sig.Get().(Diff)
	return d, ok
}

// Subscribe implements reactive.Source.
func (s *Slot) Subscribe(fn func()) (cancel func()) {
	return s.sig.Subscribe(fn)
}
