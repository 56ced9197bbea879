// Package local is the filesystem metadata store. Records are JSON documents under a
// single root: one users document, one file list per owner and an id to owner index.
package local

import (
	"encoding/json"
	"errors"
	"os"
	"path"
	"sync"

	"github.com/spf13/afero"
)

const (
	usersDoc = "users.json"
	indexDoc = "file_index.json"
	filesDir = "files"
)

type Store struct {
	mu   sync.RWMutex
	fs   afero.Fs
	root string
}

func NewStore(fs afero.Fs, root string) (*Store, error) {
	if err := fs.MkdirAll(path.Join(root, filesDir), 0o755); err != nil {
		return nil, err
	}
	return &Store{fs: fs, root: root}, nil
}

func (s *Store) docPath(name string) string { return path.Join(s.root, name) }

func (s *Store) ownerPath(owner string) string {
	return path.Join(s.root, filesDir, owner+".json")
}

// read decodes name into v. A missing document leaves v untouched.
func (s *Store) read(p string, v any) error {
	b, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(b, v)
}

// write replaces the document atomically: readers see the old or the new version.
func (s *Store) write(p string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err = afero.WriteFile(s.fs, tmp, b, 0o644); err != nil {
		return err
	}
	return s.fs.Rename(tmp, p)
}
