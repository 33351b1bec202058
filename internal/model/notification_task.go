package model

import "time"

// TaskKind distinguishes the two outbound emails produced per submission.
type TaskKind string

const (
	// TaskNotification is the email to the business operator.
	TaskNotification TaskKind = "notification"
	// TaskConfirmation is the acknowledgment sent back to the submitter.
	TaskConfirmation TaskKind = "confirmation"
)

// TaskStatus tracks delivery of a queued notification task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskSent    TaskStatus = "sent"
	TaskFailed  TaskStatus = "failed"
)

// NotificationTask represents one queued outbound email. Tasks reference
// their submission by content only; the worker needs nothing but the
// rendered message to deliver it.
type NotificationTask struct {
	ID        string     `json:"id"`
	Kind      TaskKind   `json:"kind"`
	To        string     `json:"to"`
	Subject   string     `json:"subject"`
	HTML      string     `json:"html"`
	CreatedAt time.Time  `json:"created_at"`
	Retries   int        `json:"retries"`
	Status    TaskStatus `json:"status"`
}
