package repository

import (
	"context"

	"github.com/derivativegenius/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationTaskRepository persists queued notification tasks so the
// worker's delivery bookkeeping survives restarts.
type NotificationTaskRepository interface {
	Save(ctx context.Context, task *model.NotificationTask) error
	MarkStatus(ctx context.Context, id string, status model.TaskStatus, retries int) error
}

// PgNotificationTaskRepository is the PostgreSQL implementation of
// NotificationTaskRepository.
type PgNotificationTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationTaskRepository creates a PgNotificationTaskRepository
// backed by the given pool.
func NewPgNotificationTaskRepository(pool *pgxpool.Pool) *PgNotificationTaskRepository {
	return &PgNotificationTaskRepository{pool: pool}
}

var _ NotificationTaskRepository = (*PgNotificationTaskRepository)(nil)

// Save inserts a notification_tasks row. The task ID is assigned by the
// publisher (UUID), not the database, so the queue message and the row
// share an identifier.
func (r *PgNotificationTaskRepository) Save(ctx context.Context, task *model.NotificationTask) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO notification_tasks (id, kind, recipient, subject, html, retries, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		task.ID, task.Kind, task.To, task.Subject, task.HTML, task.Retries, task.Status,
	).Scan(&task.CreatedAt)
}

// MarkStatus records the delivery outcome and retry count for a task.
func (r *PgNotificationTaskRepository) MarkStatus(ctx context.Context, id string, status model.TaskStatus, retries int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notification_tasks SET status = $2, retries = $3 WHERE id = $1`,
		id, status, retries)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
