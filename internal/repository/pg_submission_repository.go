package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/derivativegenius/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionRepository defines the persistence interface for contact
// submissions. It is defined here (in repository) to avoid an import
// cycle with service.
type SubmissionRepository interface {
	Save(ctx context.Context, sub *model.Submission) error

	// CountRecentByEmail counts submissions from the given (lowercased)
	// email with created_at at or after the window start. Used by the
	// abuse throttle; read-only.
	CountRecentByEmail(ctx context.Context, email string, since time.Time) (int, error)

	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, at time.Time) error
	MarkError(ctx context.Context, id string, reason string, at time.Time) error

	List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error)
	SetArchived(ctx context.Context, id string, archived bool) error
}

// PgSubmissionRepository is the PostgreSQL implementation of SubmissionRepository.
type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionRepository creates a PgSubmissionRepository backed by the given pool.
func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

// Ensure PgSubmissionRepository implements SubmissionRepository at compile time.
var _ SubmissionRepository = (*PgSubmissionRepository)(nil)

// Save inserts a new submissions row and populates sub.ID and CreatedAt
// from the database RETURNING clause. Status is stored as given
// (the pipeline always inserts "pending").
func (r *PgSubmissionRepository) Save(ctx context.Context, sub *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (name, email, phone, message, ip, user_agent, status)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		 RETURNING id, created_at`,
		sub.Name, sub.Email, sub.Phone, sub.Message, sub.IP, sub.UserAgent, sub.Status,
	).Scan(&sub.ID, &sub.CreatedAt)
}

// CountRecentByEmail uses an inclusive window boundary (>=) so the
// throttle errs on the strict side.
func (r *PgSubmissionRepository) CountRecentByEmail(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE email = $1 AND created_at >= $2`,
		email, since,
	).Scan(&count)
	return count, err
}

// MarkProcessing advances a pending submission to processing.
func (r *PgSubmissionRepository) MarkProcessing(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE submissions SET status = 'processing' WHERE id = $1`, id)
}

// MarkCompleted advances a submission to the terminal completed state.
func (r *PgSubmissionRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx,
		`UPDATE submissions SET status = 'completed', completed_at = $2 WHERE id = $1`,
		id, at)
}

// MarkError records the terminal error state with the failure reason.
func (r *PgSubmissionRepository) MarkError(ctx context.Context, id string, reason string, at time.Time) error {
	return r.exec(ctx,
		`UPDATE submissions SET status = 'error', error = $2, error_timestamp = $3 WHERE id = $1`,
		id, reason, at)
}

// SetArchived toggles the admin-facing archived flag.
func (r *PgSubmissionRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	return r.exec(ctx, `UPDATE submissions SET archived = $2 WHERE id = $1`, id, archived)
}

func (r *PgSubmissionRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns submissions filtered by status and paginated by
// limit/offset. Status "" or "all" returns all submissions.
func (r *PgSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	var conditions []string
	var args []any

	status := strings.TrimSpace(opts.Status)
	if status != "" && status != "all" {
		args = append(args, status)
		conditions = append(conditions, "status = $1")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limitArg := len(args) + 1
	offsetArg := len(args) + 2
	args = append(args, opts.Limit, opts.Offset)

	query := `SELECT id, name, email, COALESCE(phone, ''), message, ip, user_agent,
	                 status, archived, created_at, completed_at, COALESCE(error, ''), error_timestamp
	          FROM submissions ` + where +
		` ORDER BY created_at DESC
		  LIMIT $` + strconv.Itoa(limitArg) + ` OFFSET $` + strconv.Itoa(offsetArg)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Message, &s.IP, &s.UserAgent,
			&s.Status, &s.Archived, &s.CreatedAt, &s.CompletedAt, &s.ErrorMessage, &s.ErrorTimestamp); err != nil {
			return nil, err
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}
