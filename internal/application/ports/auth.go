package ports

import (
	"context"
	"time"

	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

type Session struct {
	User      *user.User
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

type Auth interface {
	Register(ctx context.Context, email, password, name string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time)
	Principal(ctx context.Context, userUUID user.UUID) (*user.User, error)
}

// SessionStore tracks revoked tokens until they would have expired anyway.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
