// Package identity holds the CLI's current principal. The session is loaded once from a
// Persister and updated by login, register and logout.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/client/api"
)

type (
	Principal = api.Principal
	Session   = api.Session
)

type State int

const (
	Uninitialized State = iota
	Loading
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "uninitialized"
}

var ErrNotLoggedIn = errors.New("not logged in")

// Authenticator is the server side of the session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Register(ctx context.Context, email, password, name string) (*Session, error)
	Logout(ctx context.Context, token string) error
}

type Store struct {
	mu      sync.RWMutex
	once    sync.Once
	loadErr error
	state   State
	session *Session

	auth      Authenticator
	persister Persister
	logger    *zap.Logger
	now       func() time.Time
}

func NewStore(auth Authenticator, persister Persister, logger *zap.Logger) *Store {
	return &Store{
		auth:      auth,
		persister: persister,
		logger:    logger,
		now:       time.Now,
	}
}

// Load reads the persisted session on the first call only. A missing, unreadable or
// expired session leaves the store Anonymous; the read error is returned.
func (s *Store) Load(ctx context.Context) error {
	s.once.Do(func() {
		s.setState(Loading, nil)

		sess, err := s.persister.Load(ctx)
		switch {
		case err != nil:
			s.logger.Warn("cannot read saved session", zap.Error(err))
			s.loadErr = err
			s.setState(Anonymous, nil)
		case sess == nil || sess.Token == "":
			s.setState(Anonymous, nil)
		case !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt):
			s.logger.Info("saved session expired", zap.Time("expires_at", sess.ExpiresAt))
			if err = s.persister.Clear(ctx); err != nil {
				s.logger.Warn("cannot clear expired session", zap.Error(err))
			}
			s.setState(Anonymous, nil)
		default:
			s.setState(Authenticated, sess)
		}
	})
	return s.loadErr
}

func (s *Store) Login(ctx context.Context, email, password string) (*Principal, error) {
	_ = s.Load(ctx)

	sess, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.adopt(ctx, sess)
}

// Register creates the account and logs in with it.
func (s *Store) Register(ctx context.Context, email, password, name string) (*Principal, error) {
	_ = s.Load(ctx)

	sess, err := s.auth.Register(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	return s.adopt(ctx, sess)
}

func (s *Store) adopt(ctx context.Context, sess *Session) (*Principal, error) {
	if err := s.persister.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.setState(Authenticated, sess)

	p := sess.User
	return &p, nil
}

// Logout always ends Anonymous. Server and persistence failures are only logged.
func (s *Store) Logout(ctx context.Context) {
	_ = s.Load(ctx)

	if token := s.Token(); token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			s.logger.Warn("server logout failed", zap.Error(err))
		}
	}
	if err := s.persister.Clear(ctx); err != nil {
		s.logger.Warn("cannot clear saved session", zap.Error(err))
	}
	s.setState(Anonymous, nil)
}

// Current returns nil until Load has finished or while anonymous.
func (s *Store) Current() *Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated {
		return nil
	}
	p := s.session.User
	return &p
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated {
		return ""
	}
	return s.session.Token
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) setState(state State, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.session = state, sess
}
