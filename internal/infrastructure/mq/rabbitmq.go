package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/config"
)

// "Rely on metrics, not guesses."
const bufferSize = 128

// Routing keys.
const (
	FileUploaded   = "file.uploaded"
	FileDeleted    = "file.deleted"
	BlobOrphaned   = "blob.orphaned"
	RecordOrphaned = "record.orphaned"
)

// CleanupKeys are consumed by the cleanup worker.
var CleanupKeys = []string{BlobOrphaned, RecordOrphaned}

type (
	InputCh  = chan Event
	RabbitMQ struct {
		cfg   config.MQ
		log   *zap.Logger
		conn  *amqp091.Connection
		pubCh *amqp091.Channel
		in    InputCh
	}
	Event struct {
		Id       uuid.UUID `json:"event_id"`
		TS       time.Time `json:"time_stamp"`
		Type     string    `json:"event_type"`
		OwnerID  string    `json:"owner_id"`
		FileID   string    `json:"file_id"`
		BlobPath string    `json:"blob_path"`
		Name     string    `json:"file_name,omitempty"`
		Size     int64     `json:"size_bytes,omitempty"`
	}
)

func NewEvent(eventType, ownerID, fileID, blobPath string) Event {
	return Event{
		Id:       uuid.New(),
		TS:       time.Now().UTC(),
		Type:     eventType,
		OwnerID:  ownerID,
		FileID:   fileID,
		BlobPath: blobPath,
	}
}

func New(cfg config.MQ, logger *zap.Logger) *RabbitMQ {
	return &RabbitMQ{
		cfg: cfg,
		log: logger,
		in:  make(chan Event, bufferSize),
	}
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "cloudshareit",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSClientConfig: nil,
	}

	var err error
	r.conn, err = amqp091.DialConfig(dsn, amqpCfg)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		r.conn = nil
		return fmt.Errorf("amqp channel: %w", err)
	}

	r.log.Info("rabbitmq connected", zap.String("exchange", r.cfg.Exchange))

	return nil
}

func (r *RabbitMQ) Init() error {
	var err error
	if err = r.pubCh.ExchangeDeclare(
		r.cfg.Exchange,
		r.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = r.pubCh.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	// the cleanup queue is declared by the publisher too so orphans published before
	// the consumer starts are kept
	q, err := r.pubCh.QueueDeclare(
		r.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	for _, rk := range CleanupKeys {
		if err = r.pubCh.QueueBind(q.Name, rk, r.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("queue bind %s: %w", rk, err)
		}
	}

	return nil
}

// Publish hands the event to the worker. A full buffer drops the event instead of
// stalling the request that produced it.
func (r *RabbitMQ) Publish(e Event) {
	select {
	case r.in <- e:
	default:
		// alert
		r.log.Error("mq buffer full, event dropped",
			zap.String("event_type", e.Type),
			zap.String("file_id", e.FileID),
		)
	}
}

func (r *RabbitMQ) PublisherWorker(ctx context.Context) {
	r.log.Info("starting publisher worker")

	defer func() {
		r.log.Info("publisher worker gracefully stopped")
	}()

	for {
		select {
		case e := <-r.in:
			if err := r.publish(ctx, e); err != nil {
				// alert
				r.log.Error("mq publish error", zap.Error(err), zap.String("event_type", e.Type))
			}
		case <-ctx.Done():
			r.pubCh.Close()
			return
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.Id.String(),
		Timestamp:    e.TS,
		Type:         e.Type,
		Body:         b,
	}

	return r.pubCh.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		e.Type,
		false,
		false,
		pub,
	)
}

func (r *RabbitMQ) GetConn() *amqp091.Connection { return r.conn }
