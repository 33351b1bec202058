package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/derivativegenius/backend/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads notification tasks off the queue and hands them to a
// Worker. One consumer runs per worker process.
type Consumer struct {
	ch        *amqp.Channel
	queueName string
}

// NewConsumer creates a consumer for the given declared queue.
func NewConsumer(ch *amqp.Channel, queueName string) *Consumer {
	return &Consumer{ch: ch, queueName: queueName}
}

// Run consumes deliveries until the context is canceled or the channel
// closes. Malformed payloads are dropped (acked) with a log line;
// handler errors are resolved by the worker's own retry bookkeeping, so
// deliveries are always acked here.
func (c *Consumer) Run(ctx context.Context, handle func(ctx context.Context, task *model.NotificationTask) error) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queueName,
		"",    // server-generated consumer tag
		false, // manual ack
		false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			var task model.NotificationTask
			if err := json.Unmarshal(d.Body, &task); err != nil {
				slog.Error("malformed task payload, dropping", "message_id", d.MessageId, "error", err)
				_ = d.Ack(false)
				continue
			}
			if err := handle(ctx, &task); err != nil {
				slog.Error("task handling failed", "task_id", task.ID, "error", err)
			}
			_ = d.Ack(false)
		}
	}
}
