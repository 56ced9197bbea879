// Package rmqconsumer drains the cleanup queue: blobs left behind by a failed upload
// rollback and records left behind by a failed delete.
package rmqconsumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/config"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/mq"
)

// can scale depends on a parallel worker count
const preFetchCount = 1

// Handler reconciles one orphan. A returned error requeues the message once.
type Handler func(ctx context.Context, e mq.Event) error

type Consumer struct {
	cfg        config.MQ
	log        *zap.Logger
	conn       *amqp091.Connection
	chConsume  *amqp091.Channel
	chDelivery <-chan amqp091.Delivery
	handle     Handler
}

// New reuses conn when it is open; Connect dials only when it is not.
func New(cfg config.MQ, logger *zap.Logger, conn *amqp091.Connection, handle Handler) *Consumer {
	return &Consumer{
		cfg:    cfg,
		log:    logger,
		conn:   conn,
		handle: handle,
	}
}

func (c *Consumer) Connect(dsn string) error {
	var err error
	if c.conn == nil || c.conn.IsClosed() {
		c.conn, err = amqp091.Dial(dsn)
		if err != nil {
			c.conn = nil
			return fmt.Errorf("amqp dial: %w", err)
		}
	}
	c.chConsume, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

func (c *Consumer) Init() error {
	var err error
	if err = c.chConsume.ExchangeDeclare(
		c.cfg.Exchange,
		c.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err = c.chConsume.QueueDeclare(
		c.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, rk := range mq.CleanupKeys {
		if err = c.chConsume.QueueBind(
			c.cfg.QueueName,
			rk,
			c.cfg.Exchange,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("queue bind %s: %w", rk, err)
		}
	}

	if err = c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	c.chDelivery, err = c.chConsume.Consume(
		c.cfg.QueueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return nil
}

func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting delivery worker")

	defer func() {
		c.log.Info("delivery worker gracefully stopped")
	}()

	for {
		select {
		case msg, ok := <-c.chDelivery:
			if !ok {
				c.log.Warn("delivery channel closed")
				return
			}
			if err := c.delivery(ctx, msg); err != nil {
				// alert
				c.log.Error("mq cleanup message error", zap.Error(err), zap.String("routing_key", msg.RoutingKey))
			}
		case <-ctx.Done():
			_ = c.chConsume.Close()
			return
		}
	}
}

// delivery acks handled and unparseable messages, and requeues a failed one only if it
// has not been redelivered already.
func (c *Consumer) delivery(ctx context.Context, msg amqp091.Delivery) error {
	var e mq.Event
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		_ = msg.Nack(false, false)
		return fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		e.Type = msg.RoutingKey
	}

	if err := c.handle(ctx, e); err != nil {
		_ = msg.Nack(false, !msg.Redelivered)
		return fmt.Errorf("handle %s %s: %w", e.Type, e.FileID, err)
	}

	c.log.Info("orphan reconciled",
		zap.String("event_type", e.Type),
		zap.String("file_id", e.FileID),
		zap.String("blob_path", e.BlobPath),
	)

	return msg.Ack(false)
}
