package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/derivativegenius/backend/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

// mockChannel is a mock implementation of publishChannel.
type mockChannel struct {
	publishFunc func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	published   []amqp.Publishing
	keys        []string
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	m.published = append(m.published, msg)
	m.keys = append(m.keys, key)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, exchange, key, mandatory, immediate, msg)
	}
	return nil
}

func sampleTask() *model.NotificationTask {
	return &model.NotificationTask{
		ID:      "task-1",
		Kind:    model.TaskNotification,
		To:      "joe@derivativegenius.com",
		Subject: "New Contact Form Submission from Jane Doe",
		HTML:    "<p>hello</p>",
		Status:  model.TaskPending,
	}
}

func TestPublish(t *testing.T) {
	ch := &mockChannel{}
	p := NewPublisher(ch, "notification_tasks")

	if err := p.Publish(context.Background(), sampleTask()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(ch.published))
	}

	msg := ch.published[0]
	if ch.keys[0] != "notification_tasks" {
		t.Errorf("expected routing key notification_tasks, got %q", ch.keys[0])
	}
	if msg.DeliveryMode != amqp.Persistent {
		t.Error("expected persistent delivery mode")
	}
	if msg.ContentType != "application/json" {
		t.Errorf("expected application/json, got %q", msg.ContentType)
	}
	if msg.MessageId != "task-1" {
		t.Errorf("expected message id task-1, got %q", msg.MessageId)
	}

	var task model.NotificationTask
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		t.Fatalf("body is not valid task JSON: %v", err)
	}
	if task.ID != "task-1" || task.To != "joe@derivativegenius.com" {
		t.Errorf("round-tripped task differs: %+v", task)
	}
}

func TestPublish_ChannelError(t *testing.T) {
	ch := &mockChannel{
		publishFunc: func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
			return errors.New("channel closed")
		},
	}
	p := NewPublisher(ch, "notification_tasks")

	err := p.Publish(context.Background(), sampleTask())
	if err == nil {
		t.Fatal("expected an error")
	}
}
