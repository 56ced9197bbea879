package mq

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher stands in for RabbitMQ when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{log: logger}
}

func (p *LogPublisher) Publish(e Event) {
	p.log.Info("file event",
		zap.String("event_type", e.Type),
		zap.String("owner_id", e.OwnerID),
		zap.String("file_id", e.FileID),
		zap.String("blob_path", e.BlobPath),
	)
}

func (p *LogPublisher) PublisherWorker(ctx context.Context) { <-ctx.Done() }
