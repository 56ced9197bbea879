package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
	blobLocal "github.com/Nithin3003/cloud-share-it/internal/infrastructure/blob/local"
	dbLocal "github.com/Nithin3003/cloud-share-it/internal/infrastructure/db/local"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/mq"
)

const testOrigin = "http://share.test"

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counters"}, []string{"result"})
}

type FakeEventPublisher struct {
	mu     sync.Mutex
	Events []mq.Event
}

func (p *FakeEventPublisher) Publish(e mq.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, e)
}

func (p *FakeEventPublisher) PublisherWorker(ctx context.Context) { <-ctx.Done() }

func (p *FakeEventPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.Type
	}
	return out
}

type FakeBlobStore struct {
	PutFn       func(ctx context.Context, path string, body io.Reader, size int64, contentType string) error
	RemoveFn    func(ctx context.Context, path string) error
	SignedURLFn func(ctx context.Context, path string, ttl time.Duration) (string, error)
}

func (f *FakeBlobStore) Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	if f.PutFn == nil {
		return errors.New("not used")
	}
	return f.PutFn(ctx, path, body, size, contentType)
}

func (f *FakeBlobStore) Remove(ctx context.Context, path string) error {
	if f.RemoveFn == nil {
		return errors.New("not used")
	}
	return f.RemoveFn(ctx, path)
}

func (f *FakeBlobStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if f.SignedURLFn == nil {
		return "", errors.New("not used")
	}
	return f.SignedURLFn(ctx, path, ttl)
}

func (f *FakeBlobStore) PublicURL(path string) string { return "blob://" + path }

type FakeFileRepository struct {
	CreateFileFn        func(ctx context.Context, req *file.File) (*file.File, error)
	FetchFilesByOwnerFn func(ctx context.Context, ownerID user.UUID) (file.Files, error)
	FetchOwnedFileFn    func(ctx context.Context, ownerID user.UUID, id file.ID) (*file.File, error)
	FetchFileByIDFn     func(ctx context.Context, id file.ID) (*file.File, error)
	DeleteFileFn        func(ctx context.Context, ownerID user.UUID, id file.ID) (bool, error)
}

func (f *FakeFileRepository) CreateFile(ctx context.Context, req *file.File) (*file.File, error) {
	if f.CreateFileFn == nil {
		return nil, errors.New("not used")
	}
	return f.CreateFileFn(ctx, req)
}

func (f *FakeFileRepository) FetchFilesByOwner(ctx context.Context, ownerID user.UUID) (file.Files, error) {
	if f.FetchFilesByOwnerFn == nil {
		return nil, errors.New("not used")
	}
	return f.FetchFilesByOwnerFn(ctx, ownerID)
}

func (f *FakeFileRepository) FetchOwnedFile(ctx context.Context, ownerID user.UUID, id file.ID) (*file.File, error) {
	if f.FetchOwnedFileFn == nil {
		return nil, errors.New("not used")
	}
	return f.FetchOwnedFileFn(ctx, ownerID, id)
}

func (f *FakeFileRepository) FetchFileByID(ctx context.Context, id file.ID) (*file.File, error) {
	if f.FetchFileByIDFn == nil {
		return nil, errors.New("not used")
	}
	return f.FetchFileByIDFn(ctx, id)
}

func (f *FakeFileRepository) DeleteFile(ctx context.Context, ownerID user.UUID, id file.ID) (bool, error) {
	if f.DeleteFileFn == nil {
		return false, errors.New("not used")
	}
	return f.DeleteFileFn(ctx, ownerID, id)
}

type FakeUserRepository struct {
	FetchUserByIDFn    func(ctx context.Context, uuid user.UUID) (*user.User, error)
	FetchUserByEmailFn func(ctx context.Context, email string) (*user.User, error)
	CreateUserFn       func(ctx context.Context, req user.User) (*user.User, error)
}

func (f *FakeUserRepository) FetchUserByID(ctx context.Context, uuid user.UUID) (*user.User, error) {
	if f.FetchUserByIDFn == nil {
		return nil, errors.New("not used")
	}
	return f.FetchUserByIDFn(ctx, uuid)
}

func (f *FakeUserRepository) FetchUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if f.FetchUserByEmailFn == nil {
		return nil, errors.New("not used")
	}
	return f.FetchUserByEmailFn(ctx, email)
}

func (f *FakeUserRepository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	if f.CreateUserFn == nil {
		return nil, errors.New("not used")
	}
	return f.CreateUserFn(ctx, req)
}

// knownUsers accepts exactly the given principals.
func knownUsers(ids ...user.UUID) *FakeUserRepository {
	return &FakeUserRepository{FetchUserByIDFn: func(_ context.Context, id user.UUID) (*user.User, error) {
		for _, known := range ids {
			if known == id {
				return &user.User{UUID: id, Email: id.String() + "@example.com"}, nil
			}
		}
		return nil, nil
	}}
}

type localBackend struct {
	blobs *blobLocal.Store
	files file.Repository
	users user.Repository
}

func newLocalBackend(t *testing.T) localBackend {
	t.Helper()
	return newLocalBackendOn(t, afero.NewMemMapFs())
}

func newLocalBackendOn(t *testing.T, fs afero.Fs) localBackend {
	t.Helper()
	blobs, err := blobLocal.New(fs, "/data/blobs", testOrigin, "signing-key")
	require.NoError(t, err)
	store, err := dbLocal.NewStore(fs, "/data/meta")
	require.NoError(t, err)

	return localBackend{
		blobs: blobs,
		files: dbLocal.NewFileRepository(store, zap.NewNop()),
		users: dbLocal.NewUserRepository(store),
	}
}
