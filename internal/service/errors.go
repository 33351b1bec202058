package service

import "errors"

// Kind tags a pipeline failure with its place in the error taxonomy.
// HTTP status codes are derived from the kind through an explicit table
// in the handler, never from error message text.
type Kind int

const (
	// KindValidation — user input failed a field check.
	KindValidation Kind = iota + 1
	// KindRateLimit — abuse policy rejected the submission.
	KindRateLimit
	// KindPersistence — the submission store is unreachable.
	KindPersistence
	// KindTransport — mail transport unreachable at verification time,
	// before either send was attempted.
	KindTransport
	// KindNotification — one or both sends failed after verification
	// succeeded.
	KindNotification
)

// PipelineError is the tagged error returned by the submission pipeline.
// Msg is safe to show to the caller for 4xx kinds; Err carries the
// internal cause and is only ever logged.
type PipelineError struct {
	Kind  Kind
	Field string // failing field, set for KindValidation
	Msg   string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *PipelineError) Unwrap() error { return e.Err }

// KindOf extracts the pipeline error kind, or 0 if err is not a
// PipelineError.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
