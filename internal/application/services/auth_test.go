package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/jwt"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/sessions"
)

type FakeSessionStore struct {
	RevokeFn    func(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevokedFn func(ctx context.Context, tokenID string) (bool, error)
}

func (f *FakeSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if f.RevokeFn == nil {
		return errors.New("not used")
	}
	return f.RevokeFn(ctx, tokenID, ttl)
}

func (f *FakeSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if f.IsRevokedFn == nil {
		return false, errors.New("not used")
	}
	return f.IsRevokedFn(ctx, tokenID)
}

func newAuth(t *testing.T, users user.Repository, store ports.SessionStore, permissive bool) (ports.Auth, *jwt.Service) {
	t.Helper()
	js := jwt.New("test-secret")
	return NewAuthService(zap.NewNop(), js, users, store, newCounter(), AuthOptions{
		TokenTTL:        time.Hour,
		PermissiveLogin: permissive,
		BcryptCost:      bcrypt.MinCost,
	}), js
}

func TestAuthService_Register(t *testing.T) {
	b := newLocalBackend(t)
	store := sessions.NewMemory()
	defer store.Close()
	auth, js := newAuth(t, b.users, store, false)
	ctx := context.Background()

	s, err := auth.Register(ctx, "  Alice@Example.com ", "s3cret!", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", s.User.Email)
	assert.Equal(t, "Alice", s.User.Name)
	assert.NotEqual(t, uuid.Nil, s.User.UUID)
	assert.NotEqual(t, "s3cret!", s.User.PasswordHash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)

	claims, err := js.ValidateToken(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.UUID.String(), claims.UserID)
	assert.Equal(t, s.TokenID, claims.ID)

	_, err = auth.Register(ctx, "alice@example.com", "other", "")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	auth, _ := newAuth(t, &FakeUserRepository{}, &FakeSessionStore{}, false)

	tests := []struct {
		name, email, password, field string
	}{
		{name: "empty email", email: " ", password: "x", field: "email"},
		{name: "empty password", email: "a@b.c", password: "", field: "password"},
		{name: "password too long", email: "a@b.c", password: string(make([]byte, 73)), field: "password"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tt.email, tt.password, "")
			var vErr *errs.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	b := newLocalBackend(t)
	ctx := context.Background()

	strict, _ := newAuth(t, b.users, &FakeSessionStore{}, false)
	registered, err := strict.Register(ctx, "bob@example.com", "hunter2", "")
	require.NoError(t, err)

	tests := []struct {
		name       string
		permissive bool
		email      string
		password   string
		wantErr    error
		wantNewID  bool
	}{
		{name: "valid", email: "BOB@example.com", password: "hunter2"},
		{name: "wrong password", email: "bob@example.com", password: "nope", wantErr: errs.ErrInvalidCredentials},
		{name: "unknown email", email: "carol@example.com", password: "pw", wantErr: errs.ErrInvalidCredentials},
		{name: "empty password", email: "bob@example.com", password: "", wantErr: errs.ErrInvalidCredentials},
		{name: "permissive wrong password", permissive: true, email: "bob@example.com", password: "nope", wantErr: errs.ErrInvalidCredentials},
		{name: "permissive unknown email", permissive: true, email: "dave@example.com", password: "pw", wantNewID: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			auth, _ := newAuth(t, b.users, &FakeSessionStore{}, tt.permissive)

			s, err := auth.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, s.Token)
			if tt.wantNewID {
				assert.NotEqual(t, registered.User.UUID, s.User.UUID)
				assert.Equal(t, "dave", s.User.DisplayName())
			} else {
				assert.Equal(t, registered.User.UUID, s.User.UUID)
			}
		})
	}
}

func TestAuthService_LoginStorageFailure(t *testing.T) {
	users := &FakeUserRepository{FetchUserByEmailFn: func(context.Context, string) (*user.User, error) {
		return nil, errors.New("db down")
	}}
	auth, _ := newAuth(t, users, &FakeSessionStore{}, false)

	_, err := auth.Login(context.Background(), "bob@example.com", "pw")
	var sErr *errs.StorageError
	require.ErrorAs(t, err, &sErr)
}

func TestAuthService_Logout(t *testing.T) {
	b := newLocalBackend(t)
	store := sessions.NewMemory()
	defer store.Close()
	auth, _ := newAuth(t, b.users, store, false)
	ctx := context.Background()

	s, err := auth.Register(ctx, "erin@example.com", "pw", "")
	require.NoError(t, err)

	auth.Logout(ctx, s.TokenID, s.ExpiresAt)

	revoked, err := store.IsRevoked(ctx, s.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_LogoutSwallowsStoreErrors(t *testing.T) {
	called := false
	store := &FakeSessionStore{RevokeFn: func(context.Context, string, time.Duration) error {
		called = true
		return errors.New("redis down")
	}}
	auth, _ := newAuth(t, &FakeUserRepository{}, store, false)

	assert.NotPanics(t, func() { auth.Logout(context.Background(), "jti", time.Now().Add(time.Hour)) })
	assert.True(t, called)
}

func TestAuthService_Principal(t *testing.T) {
	known := uuid.New()
	auth, _ := newAuth(t, knownUsers(known), &FakeSessionStore{}, false)
	ctx := context.Background()

	u, err := auth.Principal(ctx, known)
	require.NoError(t, err)
	assert.Equal(t, known, u.UUID)

	_, err = auth.Principal(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)

	_, err = auth.Principal(ctx, uuid.Nil)
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
}
