package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
)

// PublicResolver backs share links. It ignores ownership and mints a new access URL on
// every call.
type PublicResolver struct {
	logger    *zap.Logger
	blobs     ports.BlobStore
	files     file.Repository
	accessTTL time.Duration
}

func NewPublicResolver(
	logger *zap.Logger,
	blobs ports.BlobStore,
	files file.Repository,
	accessTTL time.Duration,
) ports.PublicResolver {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &PublicResolver{
		logger:    logger,
		blobs:     blobs,
		files:     files,
		accessTTL: accessTTL,
	}
}

func (pr *PublicResolver) Resolve(ctx context.Context, id file.ID) (*file.File, error) {
	f, err := pr.files.FetchFileByID(ctx, id)
	if err != nil {
		return nil, &errs.StorageError{Op: "fetch record", Err: err}
	}
	if f == nil {
		return nil, &errs.NotFoundError{Resource: "file", ID: id.String()}
	}

	u, err := pr.blobs.SignedURL(ctx, f.BlobPath, pr.accessTTL)
	if err != nil {
		pr.logger.Error("mint access url", zap.Error(err), zap.String("file_id", id.String()))
		return nil, &errs.StorageError{Op: "sign url", Err: err}
	}
	f.AccessURL = u

	return f, nil
}
