package ports

import "context"

// CleanupConsumer drains the blob.orphaned and record.orphaned events left by the
// file registry.
type CleanupConsumer interface {
	Connect(dsn string) error
	Init() error
	// DeliveryWorker blocks until ctx is done or the broker closes the channel.
	DeliveryWorker(ctx context.Context)
}
