package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/derivativegenius/backend/internal/model"
	"github.com/derivativegenius/backend/internal/repository"
	"github.com/derivativegenius/backend/internal/validate"
)

const (
	// ThrottleWindow is the trailing interval used to bound submissions
	// per email address.
	ThrottleWindow = 5 * time.Minute
	// ThrottleLimit is the inclusive rejection threshold: the Nth
	// submission where N >= ThrottleLimit prior submissions exist in the
	// window is refused.
	ThrottleLimit = 3
)

const rateLimitMessage = "Too many requests. Please try again in a few minutes."

// submissionServiceImpl is the production implementation of SubmissionService.
type submissionServiceImpl struct {
	repo     repository.SubmissionRepository
	notifier Notifier
	now      func() time.Time
}

// NewSubmissionService creates a SubmissionService backed by the given
// repository and notifier.
func NewSubmissionService(repo repository.SubmissionRepository, notifier Notifier) SubmissionService {
	return &submissionServiceImpl{repo: repo, notifier: notifier, now: time.Now}
}

// Process runs the pipeline. The throttle check and the store write are
// deliberately not transactional: two near-simultaneous submissions from
// the same address can both pass the check, so the limit is a
// best-effort cap rather than a hard guarantee.
func (s *submissionServiceImpl) Process(ctx context.Context, in SubmissionInput) (*model.Submission, error) {
	draft, err := validate.Submission(in.Name, in.Email, in.Phone, in.Message)
	if err != nil {
		fe := err.(*validate.FieldError)
		return nil, &PipelineError{Kind: KindValidation, Field: fe.Field, Msg: fe.Reason}
	}

	since := s.now().Add(-ThrottleWindow)
	count, err := s.repo.CountRecentByEmail(ctx, draft.Email, since)
	if err != nil {
		return nil, &PipelineError{Kind: KindPersistence, Msg: "throttle lookup failed", Err: err}
	}
	if count >= ThrottleLimit {
		return nil, &PipelineError{Kind: KindRateLimit, Msg: rateLimitMessage}
	}

	sub := &model.Submission{
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Message:   draft.Message,
		IP:        in.IP,
		UserAgent: in.UserAgent,
		Status:    model.StatusPending,
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		// Nothing was durably recorded, so no emails and no finalizer.
		return nil, &PipelineError{Kind: KindPersistence, Msg: "store submission failed", Err: err}
	}

	if err := s.repo.MarkProcessing(ctx, sub.ID); err != nil {
		return nil, s.fail(ctx, sub, KindPersistence, "advance to processing failed", err)
	}
	sub.Status = model.StatusProcessing

	if err := s.notifier.Verify(ctx); err != nil {
		return nil, s.fail(ctx, sub, KindTransport, "mail transport verification failed", err)
	}

	if err := s.notifier.Notify(ctx, sub); err != nil {
		return nil, s.fail(ctx, sub, KindNotification, "notification dispatch failed", err)
	}

	completedAt := s.now().UTC()
	if err := s.repo.MarkCompleted(ctx, sub.ID, completedAt); err != nil {
		// Best-effort: the user-facing outcome is already success.
		slog.Error("finalize completed failed", "submission_id", sub.ID, "error", err)
	}
	sub.Status = model.StatusCompleted
	sub.CompletedAt = &completedAt
	return sub, nil
}

// fail records the terminal error state on the submission. The update is
// best-effort: its own failure is logged and swallowed so the original
// error is not masked by a secondary one.
func (s *submissionServiceImpl) fail(ctx context.Context, sub *model.Submission, kind Kind, msg string, cause error) error {
	at := s.now().UTC()
	if err := s.repo.MarkError(ctx, sub.ID, cause.Error(), at); err != nil {
		slog.Error("finalize error failed", "submission_id", sub.ID, "error", err)
	}
	sub.Status = model.StatusError
	sub.ErrorMessage = cause.Error()
	sub.ErrorTimestamp = &at
	return &PipelineError{Kind: kind, Msg: msg, Err: cause}
}

// List returns submissions according to the given filter/pagination options.
func (s *submissionServiceImpl) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	return s.repo.List(ctx, opts)
}

// SetArchived toggles the archived flag on a submission.
func (s *submissionServiceImpl) SetArchived(ctx context.Context, id string, archived bool) error {
	return s.repo.SetArchived(ctx, id, archived)
}
