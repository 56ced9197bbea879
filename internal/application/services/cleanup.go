package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/mq"
)

// Cleanup reconciles the orphans reported by the registry: a blob whose record was
// never written, or a record whose blob is already gone.
type Cleanup struct {
	logger   *zap.Logger
	blobs    ports.BlobStore
	files    file.Repository
	mCounter *prometheus.CounterVec
}

func NewCleanup(
	logger *zap.Logger,
	blobs ports.BlobStore,
	files file.Repository,
	mCounter *prometheus.CounterVec,
) *Cleanup {
	return &Cleanup{
		logger:   logger,
		blobs:    blobs,
		files:    files,
		mCounter: mCounter,
	}
}

func (c *Cleanup) Handle(ctx context.Context, e mq.Event) error {
	owner, err := uuid.Parse(e.OwnerID)
	if err != nil {
		return fmt.Errorf("owner id: %w", err)
	}
	id, err := uuid.Parse(e.FileID)
	if err != nil {
		return fmt.Errorf("file id: %w", err)
	}

	switch e.Type {
	case mq.BlobOrphaned:
		err = c.removeBlob(ctx, owner, id, e.BlobPath)
	case mq.RecordOrphaned:
		_, err = c.files.DeleteFile(ctx, owner, id)
	default:
		c.logger.Warn("ignoring event", zap.String("event_type", e.Type))
		return nil
	}
	if err != nil {
		c.mCounter.WithLabelValues("cleanup_error").Inc()
		return err
	}

	c.mCounter.WithLabelValues("cleanup_total").Inc()
	return nil
}

// removeBlob keeps the blob when a record for it turned up after all, e.g. when the
// insert committed but its acknowledgement was lost.
func (c *Cleanup) removeBlob(ctx context.Context, owner uuid.UUID, id file.ID, blobPath string) error {
	f, err := c.files.FetchOwnedFile(ctx, owner, id)
	if err != nil {
		return err
	}
	if f != nil && f.BlobPath == blobPath {
		c.logger.Info("blob is referenced, keeping it", zap.String("blob_path", blobPath))
		return nil
	}
	return c.blobs.Remove(ctx, blobPath)
}
