package queue

import (
	"context"
	"fmt"

	"github.com/derivativegenius/backend/internal/mail"
	"github.com/derivativegenius/backend/internal/model"
	"github.com/derivativegenius/backend/internal/repository"
	"github.com/google/uuid"
)

// StatusStore is the live delivery bookkeeping the notifier and worker
// write to (implemented by taskstatus.Store).
type StatusStore interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, id string, status model.TaskStatus) error
}

// taskPublisher is implemented by Publisher; extracted for testing.
type taskPublisher interface {
	Publish(ctx context.Context, task *model.NotificationTask) error
}

// Notifier is the deferred delivery strategy: instead of sending inline
// it records two NotificationTasks and enqueues them for the worker.
type Notifier struct {
	pub      taskPublisher
	tasks    repository.NotificationTaskRepository
	status   StatusStore
	operator string
}

// NewNotifier creates a queue-mode notifier.
func NewNotifier(pub taskPublisher, tasks repository.NotificationTaskRepository, status StatusStore, operator string) *Notifier {
	return &Notifier{pub: pub, tasks: tasks, status: status, operator: operator}
}

// Verify checks that the delivery bookkeeping store is reachable before
// any task is queued.
func (n *Notifier) Verify(ctx context.Context) error {
	return n.status.Ping(ctx)
}

// Notify renders both emails as tasks, persists them, and enqueues them.
func (n *Notifier) Notify(ctx context.Context, sub *model.Submission) error {
	msgs := []struct {
		kind model.TaskKind
		msg  mail.Message
	}{
		{model.TaskNotification, mail.OperatorNotification(n.operator, sub)},
		{model.TaskConfirmation, mail.SubmitterConfirmation(sub)},
	}

	for _, m := range msgs {
		task := &model.NotificationTask{
			ID:      uuid.New().String(),
			Kind:    m.kind,
			To:      m.msg.To,
			Subject: m.msg.Subject,
			HTML:    m.msg.HTML,
			Status:  model.TaskPending,
		}
		if err := n.tasks.Save(ctx, task); err != nil {
			return fmt.Errorf("save %s task: %w", task.Kind, err)
		}
		if err := n.status.Set(ctx, task.ID, model.TaskPending); err != nil {
			return fmt.Errorf("record %s task status: %w", task.Kind, err)
		}
		if err := n.pub.Publish(ctx, task); err != nil {
			return fmt.Errorf("enqueue %s task: %w", task.Kind, err)
		}
	}
	return nil
}
