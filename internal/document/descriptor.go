package document

import (
	"fmt"
	"path/filepath"

	"github.com/dshills/livediff/internal/buffer"
)

// Kind identifies where a document's content comes from.
type Kind string

const (
	// KindFile is a file on disk.
	KindFile Kind = "file"

	// KindTransient is an unsaved scratch buffer.
	KindTransient Kind = "transient"

	// KindHistory is a file as of a historical revision.
	KindHistory Kind = "history"
)

// Descriptor names a document's content. It is small and serializable so
// diff pairings can be persisted and restored.
type Descriptor struct {
	Kind Kind `yaml:"kind" toml:"kind" json:"kind"`

	// Path is the file path for file and history documents.
	Path string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`

	// Ref is the historical revision for history documents.
	Ref string `yaml:"ref,omitempty" toml:"ref,omitempty" json:"ref,omitempty"`

	// Name is the display name for transient documents.
	Name string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
}

// File returns a descriptor for a file on disk.
func File(path string) Descriptor {
	return Descriptor{Kind: KindFile, Path: path}
}

// Transient returns a descriptor for a scratch buffer.
func Transient(name string) Descriptor {
	return Descriptor{Kind: KindTransient, Name: name}
}

// History returns a descriptor for path as of ref.
func History(path, ref string) Descriptor {
	return Descriptor{Kind: KindHistory, Path: path, Ref: ref}
}

// Validate checks that the descriptor has the fields its kind needs.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindFile:
		if d.Path == "" {
			return fmt.Errorf("%w: file descriptor without path", ErrInvalidDescriptor)
		}
	case KindHistory:
		if d.Path == "" || d.Ref == "" {
			return fmt.Errorf("%w: history descriptor needs path and ref", ErrInvalidDescriptor)
		}
	case KindTransient:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDescriptor, d.Kind)
	}
	return nil
}

// identity derives the buffer identity. Transient documents are unique per
// instance, so their identity comes from the document ID.
func (d Descriptor) identity(id string) buffer.Identity {
	switch d.Kind {
	case KindFile:
		return buffer.Identity("file:" + d.Path)
	case KindHistory:
		return buffer.Identity("history:" + d.Path + "@" + d.Ref)
	default:
		return buffer.Identity("transient:" + id)
	}
}

// String returns a human-readable representation of the descriptor.
func (d Descriptor) String() string {
	switch d.Kind {
	case KindFile:
		return d.Path
	case KindHistory:
		return d.Path + "@" + d.Ref
	default:
		if d.Name != "" {
			return d.Name
		}
		return "Untitled"
	}
}

// displayName is the short name shown in a pane header.
func (d Descriptor) displayName() string {
	switch d.Kind {
	case KindFile:
		return filepath.Base(d.Path)
	case KindHistory:
		return filepath.Base(d.Path) + "@" + d.Ref
	default:
		return d.String()
	}
}
