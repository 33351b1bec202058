// Package queue defers notification delivery through RabbitMQ. The
// server publishes rendered tasks; the worker consumes and sends them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/derivativegenius/backend/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

// publishChannel is the slice of *amqp.Channel the publisher needs,
// extracted for testing.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends notification tasks to a durable queue.
type Publisher struct {
	ch        publishChannel
	queueName string
}

// NewPublisher creates a publisher targeting the given queue. The
// channel is normally an *amqp.Channel on which Declare has been run.
func NewPublisher(ch publishChannel, queueName string) *Publisher {
	return &Publisher{ch: ch, queueName: queueName}
}

// Declare ensures the task queue exists. Run once at startup by both
// the server and the worker.
func Declare(ch *amqp.Channel, queueName string) error {
	_, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare %s: %w", queueName, err)
	}
	return nil
}

// Publish serializes a task and enqueues it for the worker.
func (p *Publisher) Publish(ctx context.Context, task *model.NotificationTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    task.ID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish task %s: %w", task.ID, err)
	}

	slog.Info("published notification task",
		"task_id", task.ID,
		"kind", task.Kind,
		"queue", p.queueName,
	)
	return nil
}
