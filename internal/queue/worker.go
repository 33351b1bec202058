package queue

import (
	"context"
	"log/slog"

	"github.com/derivativegenius/backend/internal/mail"
	"github.com/derivativegenius/backend/internal/model"
	"github.com/derivativegenius/backend/internal/repository"
)

// Worker delivers queued notification tasks over the mail transport and
// keeps the Postgres row and Redis status in sync with the outcome.
type Worker struct {
	sender     mail.Sender
	tasks      repository.NotificationTaskRepository
	status     StatusStore
	pub        taskPublisher
	maxRetries int
}

// NewWorker creates a worker. pub is used to requeue failed tasks until
// maxRetries is exhausted.
func NewWorker(sender mail.Sender, tasks repository.NotificationTaskRepository, status StatusStore, pub taskPublisher, maxRetries int) *Worker {
	return &Worker{sender: sender, tasks: tasks, status: status, pub: pub, maxRetries: maxRetries}
}

// Handle delivers one task. Send failure requeues the task with an
// incremented retry counter; once retries are exhausted the task is
// marked failed. Bookkeeping failures are logged but never fail the
// delivery itself.
func (w *Worker) Handle(ctx context.Context, task *model.NotificationTask) error {
	err := w.sender.Send(ctx, mail.Message{To: task.To, Subject: task.Subject, HTML: task.HTML})
	if err == nil {
		w.record(ctx, task, model.TaskSent)
		slog.Info("notification task delivered", "task_id", task.ID, "kind", task.Kind)
		return nil
	}

	task.Retries++
	if task.Retries < w.maxRetries {
		slog.Warn("send failed, requeueing task",
			"task_id", task.ID, "retries", task.Retries, "error", err)
		if pubErr := w.pub.Publish(ctx, task); pubErr != nil {
			// Could not requeue either; give up and mark failed.
			w.record(ctx, task, model.TaskFailed)
			return pubErr
		}
		w.record(ctx, task, model.TaskPending)
		return nil
	}

	w.record(ctx, task, model.TaskFailed)
	return err
}

func (w *Worker) record(ctx context.Context, task *model.NotificationTask, status model.TaskStatus) {
	task.Status = status
	if err := w.tasks.MarkStatus(ctx, task.ID, status, task.Retries); err != nil {
		slog.Error("update task row failed", "task_id", task.ID, "error", err)
	}
	if err := w.status.Set(ctx, task.ID, status); err != nil {
		slog.Error("update task status failed", "task_id", task.ID, "error", err)
	}
}
