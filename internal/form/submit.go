// internal/form/submit.go
//
// Folio – Forms subsystem: submission payload, attempts, and results.
//
// Context
//   A submit attempt that passes validation becomes an Attempt: an immutable
//   Payload snapshot plus a completion channel.  The Gateway carries the
//   payload to the remote endpoint; its outcome comes back as a Result and
//   is applied by Controller.OnSubmissionResult.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors.
var (
	// ErrSubmissionInFlight rejects OnSubmit while an attempt is pending.
	ErrSubmissionInFlight = errors.New("form: submission already in flight")
	// ErrNoSubmissionInFlight rejects a Result that matches no pending attempt.
	ErrNoSubmissionInFlight = errors.New("form: no matching submission in flight")
	// ErrUnknownField is returned for field names the FormDef does not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrTimeout is wrapped by a SubmissionError when the controller deadline
	// expires before the gateway answers.
	ErrTimeout = errors.New("form: submission timed out")
)

// Payload is the snapshot of all field values sent to the remote endpoint.
// Values are sent exactly as entered.
type Payload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// payloadFrom builds a Payload from a value map keyed by field name.
func payloadFrom(values map[string]string) Payload {
	return Payload{
		Name:    values[FieldName],
		Email:   values[FieldEmail],
		Subject: values[FieldSubject],
		Message: values[FieldMessage],
	}
}

// Gateway performs the one outbound operation per accepted attempt.  It must
// not retry; a failure is reported once.
type Gateway interface {
	Submit(ctx context.Context, p Payload) error
}

// Result is the outcome of one attempt.  Err is nil on success.
type Result struct {
	AttemptID string
	Err       error
}

// OK reports whether the attempt succeeded.
func (r Result) OK() bool { return r.Err == nil }

// SubmissionError wraps the cause of a failed attempt.
type SubmissionError struct {
	AttemptID string
	Cause     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission %s failed: %v", e.AttemptID, e.Cause)
}

func (e *SubmissionError) Unwrap() error { return e.Cause }

// Attempt is one accepted submission.  Wait blocks until its Result has been
// applied to the Controller.
type Attempt struct {
	ID        string
	Payload   Payload
	StartedAt time.Time

	ctx  context.Context // detached from caller cancellation
	done chan struct{}
	res  Result
}

func newAttempt(ctx context.Context, p Payload) *Attempt {
	return &Attempt{
		ID:        uuid.NewString(),
		Payload:   p,
		StartedAt: time.Now(),
		ctx:       context.WithoutCancel(ctx),
		done:      make(chan struct{}),
	}
}

// Done is closed once the Result has been applied.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// Wait returns the applied Result, or ctx.Err() if ctx ends first.  The
// attempt itself keeps running when ctx ends.
func (a *Attempt) Wait(ctx context.Context) (Result, error) {
	select {
	case <-a.done:
		return a.res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// finish publishes res.  Called exactly once, by OnSubmissionResult.
func (a *Attempt) finish(res Result) {
	a.res = res
	close(a.done)
}
