package ports

import (
	"context"
	"io"

	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

type UploadInput struct {
	Body     io.Reader
	Name     string
	Size     int64
	MimeType string
}

type FileRegistry interface {
	Upload(ctx context.Context, owner user.UUID, in UploadInput) (*file.File, error)
	List(ctx context.Context, owner user.UUID) (file.Files, error)
	GetByID(ctx context.Context, owner user.UUID, id file.ID) (*file.File, error)
	DeleteByID(ctx context.Context, owner user.UUID, id file.ID) error
}

type PublicResolver interface {
	Resolve(ctx context.Context, id file.ID) (*file.File, error)
}
