package mail

import (
	"context"
	"errors"
	"sync"

	"github.com/derivativegenius/backend/internal/model"
)

// DirectNotifier sends both submission emails inline over the injected
// transport. The two sends run concurrently and are both awaited; a
// failure in one does not cancel the other.
type DirectNotifier struct {
	sender   Sender
	operator string
}

// NewDirectNotifier creates a DirectNotifier delivering the operator
// notification to the given address.
func NewDirectNotifier(sender Sender, operator string) *DirectNotifier {
	return &DirectNotifier{sender: sender, operator: operator}
}

// Verify pre-checks the transport connection before the first send.
func (n *DirectNotifier) Verify(ctx context.Context) error {
	return n.sender.Verify(ctx)
}

// Notify sends the operator notification and the submitter confirmation.
func (n *DirectNotifier) Notify(ctx context.Context, sub *model.Submission) error {
	msgs := []Message{
		OperatorNotification(n.operator, sub),
		SubmitterConfirmation(sub),
	}

	errs := make([]error, len(msgs))
	var wg sync.WaitGroup
	for i, msg := range msgs {
		wg.Add(1)
		go func(i int, msg Message) {
			defer wg.Done()
			errs[i] = n.sender.Send(ctx, msg)
		}(i, msg)
	}
	wg.Wait()

	return errors.Join(errs...)
}
