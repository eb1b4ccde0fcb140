package diffeditor

import (
	"context"
	"fmt"

	"github.com/dshills/livediff/internal/document"
	"github.com/dshills/livediff/internal/editor"
	"github.com/dshills/livediff/internal/reactive"
)

// DiffEditorInfo is the persisted form of a pairing. Diff results are never
// stored; they are recomputed after restore.
type DiffEditorInfo struct {
	LeftContent  document.Descriptor `yaml:"left_content" toml:"left_content" json:"left_content"`
	RightContent document.Descriptor `yaml:"right_content" toml:"right_content" json:"right_content"`
}

// Opener resolves descriptors into documents. *document.Manager satisfies it.
type Opener interface {
	OpenAsync(ctx context.Context, desc document.Descriptor) (*document.Document, error)
}

// Info returns the descriptors of the documents currently shown.
func (d *DiffEditor) Info() DiffEditorInfo {
	return DiffEditorInfo{
		LeftContent:  descriptorOf(d.left),
		RightContent: descriptorOf(d.right),
	}
}

func descriptorOf(e *editor.Editor) document.Descriptor {
	if doc := e.Document(); doc != nil {
		return doc.Descriptor()
	}
	return document.Transient("")
}

// Open restores a pairing from info. Documents load in the background;
// the first diff runs once both are available.
func Open(ctx context.Context, parent *reactive.Scope, docs Opener, pool Submitter, info DiffEditorInfo, opts ...Option) (*DiffEditor, error) {
	left, err := docs.OpenAsync(ctx, info.LeftContent)
	if err != nil {
		return nil, fmt.Errorf("opening left %s: %w", info.LeftContent, err)
	}
	right, err := docs.OpenAsync(ctx, info.RightContent)
	if err != nil {
		return nil, fmt.Errorf("opening right %s: %w", info.RightContent, err)
	}
	return New(parent, pool, left, right, opts...), nil
}

// Copy creates a new pairing in the same tab showing the same documents
// with fresh editors.
func (d *DiffEditor) Copy() *DiffEditor {
	return newDiffEditor(d.parent, d.pool, d.cfg, func(scope *reactive.Scope) (*editor.Editor, *editor.Editor) {
		return d.left.Copy(scope), d.right.Copy(scope)
	})
}
