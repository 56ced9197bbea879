package ports

import (
	"context"

	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/mq"
)

// EventPublisher queues file lifecycle events. Publish must not block the request path.
type EventPublisher interface {
	Publish(e mq.Event)
	PublisherWorker(ctx context.Context)
}
