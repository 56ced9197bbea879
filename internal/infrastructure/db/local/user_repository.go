package local

import (
	"context"
	"strings"
	"time"

	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

type userRecord struct {
	UUID         user.UUID `json:"uuid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r userRecord) toDomain() *user.User {
	return &user.User{
		UUID:         r.UUID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		CreatedAt:    r.CreatedAt,
	}
}

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) user.Repository {
	return &UserRepository{store: store}
}

func (r *UserRepository) load() ([]userRecord, error) {
	var recs []userRecord
	err := r.store.read(r.store.docPath(usersDoc), &recs)
	return recs, err
}

func (r *UserRepository) FetchUserByID(_ context.Context, uuid user.UUID) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	recs, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.UUID == uuid {
			return rec.toDomain(), nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FetchUserByEmail(_ context.Context, email string) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	recs, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if strings.EqualFold(rec.Email, email) {
			return rec.toDomain(), nil
		}
	}
	return nil, nil
}

func (r *UserRepository) CreateUser(_ context.Context, req user.User) (*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	recs, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if strings.EqualFold(rec.Email, req.Email) {
			return nil, errs.ErrAlreadyExists
		}
	}

	rec := userRecord{
		UUID:         req.UUID,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Name:         req.Name,
		CreatedAt:    req.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err = r.store.write(r.store.docPath(usersDoc), append(recs, rec)); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}
