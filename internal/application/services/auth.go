package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/jwt"
)

// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
const maxPasswordBytes = 72

var ErrFailedToGenerateToken = errors.New("failed to generate token")

type AuthOptions struct {
	TokenTTL time.Duration
	// PermissiveLogin provisions unknown e-mails on login instead of rejecting them.
	PermissiveLogin bool
	BcryptCost      int
}

type AuthService struct {
	logger     *zap.Logger
	jwtService *jwt.Service
	users      user.Repository
	sessions   ports.SessionStore
	mCounter   *prometheus.CounterVec
	opts       AuthOptions
}

func NewAuthService(
	logger *zap.Logger,
	jwtService *jwt.Service,
	users user.Repository,
	sessions ports.SessionStore,
	mCounter *prometheus.CounterVec,
	opts AuthOptions,
) ports.Auth {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		logger:     logger,
		jwtService: jwtService,
		users:      users,
		sessions:   sessions,
		mCounter:   mCounter,
		opts:       opts,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *AuthService) Register(ctx context.Context, email, password, name string) (*ports.Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, &errs.ValidationError{Field: "email", Reason: "is required"}
	}
	if password == "" {
		return nil, &errs.ValidationError{Field: "password", Reason: "is required"}
	}
	if len(password) > maxPasswordBytes {
		return nil, &errs.ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	}

	u, err := as.createUser(ctx, email, password, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	as.mCounter.WithLabelValues("users_registered_total").Inc()

	return as.issue(u)
}

func (as *AuthService) createUser(ctx context.Context, email, password, name string) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := as.users.CreateUser(ctx, user.User{
		UUID:         uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, &errs.StorageError{Op: "create user", Err: err}
	}
	return u, nil
}

func (as *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errs.ErrInvalidCredentials
	}

	u, err := as.users.FetchUserByEmail(ctx, email)
	if err != nil {
		return nil, &errs.StorageError{Op: "fetch user", Err: err}
	}
	if u == nil {
		if !as.opts.PermissiveLogin {
			as.mCounter.WithLabelValues("login_error").Inc()
			return nil, errs.ErrInvalidCredentials
		}

		as.logger.Warn("provisioning unknown e-mail on login", zap.String("email", email))
		if u, err = as.createUser(ctx, email, password, ""); err != nil {
			return nil, err
		}
		return as.issue(u)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		as.mCounter.WithLabelValues("login_error").Inc()
		return nil, errs.ErrInvalidCredentials
	}

	as.mCounter.WithLabelValues("login_total").Inc()

	return as.issue(u)
}

func (as *AuthService) issue(u *user.User) (*ports.Session, error) {
	token, claims, err := as.jwtService.GenerateJWT(u.UUID.String(), u.Email, as.opts.TokenTTL)
	if err != nil {
		as.logger.Error("generate token", zap.Error(err))
		return nil, ErrFailedToGenerateToken
	}

	return &ports.Session{
		User:      u,
		Token:     token,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the token for the rest of its lifetime. Failures are only logged.
func (as *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) {
	if tokenID == "" {
		return
	}
	if err := as.sessions.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
		as.logger.Error("revoke token", zap.Error(err), zap.String("token_id", tokenID))
		return
	}

	as.mCounter.WithLabelValues("logout_total").Inc()
}

func (as *AuthService) Principal(ctx context.Context, userUUID user.UUID) (*user.User, error) {
	if userUUID == uuid.Nil {
		return nil, errs.ErrNotAuthenticated
	}
	u, err := as.users.FetchUserByID(ctx, userUUID)
	if err != nil {
		return nil, &errs.StorageError{Op: "fetch user", Err: err}
	}
	if u == nil {
		return nil, errs.ErrNotAuthenticated
	}
	return u, nil
}
