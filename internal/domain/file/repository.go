package file

import (
	"context"

	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

// Repository is the metadata store. Fetch methods return (nil, nil) when nothing matches.
type Repository interface {
	CreateFile(ctx context.Context, req *File) (*File, error)
	// FetchFilesByOwner returns the owner's records, newest first.
	FetchFilesByOwner(ctx context.Context, ownerID user.UUID) (Files, error)
	FetchOwnedFile(ctx context.Context, ownerID user.UUID, id ID) (*File, error)
	// FetchFileByID ignores ownership; it backs the public share path.
	FetchFileByID(ctx context.Context, id ID) (*File, error)
	// DeleteFile reports whether a row owned by ownerID was removed.
	DeleteFile(ctx context.Context, ownerID user.UUID, id ID) (bool, error)
}
