package service

import (
	"context"

	"github.com/derivativegenius/backend/internal/model"
)

// SubmissionInput carries the raw form fields plus request origin
// metadata into the pipeline.
type SubmissionInput struct {
	Name      string
	Email     string
	Phone     string
	Message   string
	IP        string
	UserAgent string
}

// Notifier dispatches the two outbound emails for a stored submission.
// Implementations: mail.DirectNotifier (inline SMTP) and
// queue.Notifier (deferred tasks).
type Notifier interface {
	// Verify pre-checks the transport before the first send. A failure
	// here aborts the pipeline before anything is dispatched.
	Verify(ctx context.Context) error
	Notify(ctx context.Context, sub *model.Submission) error
}

// SubmissionService defines the business logic for contact submissions.
type SubmissionService interface {
	// Process runs the full pipeline for one submission: validation,
	// abuse throttling, persistence, notification dispatch and status
	// finalization. On success the returned submission reflects its
	// final stored state.
	Process(ctx context.Context, in SubmissionInput) (*model.Submission, error)

	// List returns stored submissions for the admin dashboard.
	List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error)

	// SetArchived toggles the admin-facing archived flag.
	SetArchived(ctx context.Context, id string, archived bool) error
}
