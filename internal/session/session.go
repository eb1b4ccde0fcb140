// Package session persists open diff pairings so they can be restored on
// the next start. Only content descriptors are stored; diffs are always
// recomputed.
package session

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dshills/livediff/internal/diffeditor"
)

// Version is the current session file format.
const Version = 1

// ErrUnsupportedVersion indicates a session file written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported session version")

// Session is the on-disk document.
type Session struct {
	Version  int                         `yaml:"version"`
	Pairings []diffeditor.DiffEditorInfo `yaml:"pairings"`
}

// Store reads and writes a session file.
type Store struct {
	path string
}

// NewStore creates a store for the YAML file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the session file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored pairings. A missing file yields none. Entries with
// invalid descriptors are rejected.
func (s *Store) Load() ([]diffeditor.DiffEditorInfo, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session %s: %w", s.path, err)
	}

	var sess Session
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sess); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", s.path, err)
	}
	if sess.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, sess.Version)
	}

	for i, p := range sess.Pairings {
		if err := p.LeftContent.Validate(); err != nil {
			return nil, fmt.Errorf("session pairing %d left: %w", i, err)
		}
		if err := p.RightContent.Validate(); err != nil {
			return nil, fmt.Errorf("session pairing %d right: %w", i, err)
		}
	}
	return sess.Pairings, nil
}

// Save writes pairings atomically by renaming a temporary file into place.
func (s *Store) Save(pairings []diffeditor.DiffEditorInfo) error {
	data, err := yaml.Marshal(Session{Version: Version, Pairings: pairings})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("creating session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing session: %w", err)
	}
	return nil
}
