package identity

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// Persister keeps the session between CLI runs. Load returns (nil, nil) when nothing
// is saved.
type Persister interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// DefaultSessionPath is $XDG_CONFIG_HOME/cloudshareit/session.json.
func DefaultSessionPath() string {
	return filepath.Join(xdg.ConfigHome, "cloudshareit", "session.json")
}

type FilePersister struct {
	fs   afero.Fs
	path string
}

func NewFilePersister(fs afero.Fs, path string) *FilePersister {
	return &FilePersister{fs: fs, path: path}
}

func (p *FilePersister) Load(_ context.Context) (*Session, error) {
	b, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var s Session
	if err = json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the session readable by the current user only.
func (p *FilePersister) Save(_ context.Context, s *Session) error {
	if err := p.fs.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(p.fs, p.path, b, 0o600)
}

func (p *FilePersister) Clear(_ context.Context) error {
	if err := p.fs.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type MemoryPersister struct {
	mu      sync.Mutex
	session *Session
}

func (p *MemoryPersister) Load(context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil, nil
	}
	cp := *p.session
	return &cp, nil
}

func (p *MemoryPersister) Save(_ context.Context, s *Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *s
	p.session = &cp
	return nil
}

func (p *MemoryPersister) Clear(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return nil
}
