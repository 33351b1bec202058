package model

import "time"

// SubmissionStatus tracks a submission through the notification pipeline.
type SubmissionStatus string

const (
	// StatusPending is set when the submission is first stored.
	StatusPending SubmissionStatus = "pending"
	// StatusProcessing is set once notification dispatch has started.
	StatusProcessing SubmissionStatus = "processing"
	// StatusCompleted means both outbound emails were dispatched.
	StatusCompleted SubmissionStatus = "completed"
	// StatusError is terminal; the failure reason is recorded on the record.
	StatusError SubmissionStatus = "error"
)

// Submission represents one contact-form attempt and its persisted record.
// Email is always stored lowercased so the throttle count is case-insensitive.
type Submission struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone,omitempty"`
	Message        string           `json:"message"`
	IP             string           `json:"ip"`
	UserAgent      string           `json:"user_agent"`
	Status         SubmissionStatus `json:"status"`
	Archived       bool             `json:"archived"`
	CreatedAt      time.Time        `json:"created_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	ErrorMessage   string           `json:"error,omitempty"`
	ErrorTimestamp *time.Time       `json:"error_timestamp,omitempty"`
}

// SubmissionListOptions carries filter and pagination parameters for the
// admin listing endpoint.
type SubmissionListOptions struct {
	// Status filters by lifecycle status: "", "all", or one of the
	// SubmissionStatus values. Empty string and "all" return everything.
	Status string
	Limit  int
	Offset int
}
