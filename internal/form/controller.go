// internal/form/controller.go
//
// Folio – Forms subsystem: per-form submission state machine.
//
// Context
//   One Controller owns one form instance: its field values, the latest
//   verdict per field, and the submission Phase.  Nothing else writes them.
//   The HTTP component keeps one Controller per visitor session; the CLI
//   builds one per invocation; tests drive it directly.
//
// Workflow
//   •  OnFieldBlur validates one field and shows or clears its error.
//   •  OnFieldInput stores the value and clears the field's error until the
//      next blur or submit.
//   •  OnSubmit validates every field.  When all pass it moves Idle →
//      Submitting, snapshots a Payload, and relays it on its own goroutine.
//      A second OnSubmit while Submitting is rejected.
//   •  OnSubmissionResult moves Submitting → Succeeded or Failed, notifies
//      the visitor, and resets to Idle so the next OnSubmit is accepted.
//
// Notes
//   •  All state lives behind one mutex.  Presenter, Notifier, and the phase
//      hook run while it is held and must not call back into the Controller.
//   •  The gateway call is detached from caller cancellation.  With a
//      timeout configured, an expired deadline is a Failed result whose
//      cause wraps ErrTimeout.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/folio/internal/metrics"
)

// -----------------------------------------------------------------------------
// Phase
// -----------------------------------------------------------------------------

// Phase is the submission lifecycle state of a form.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// -----------------------------------------------------------------------------
// Collaborators
// -----------------------------------------------------------------------------

// Kind classifies a visitor notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Presenter renders per-field feedback.  All visual effects are its concern.
type Presenter interface {
	ShowFieldError(field, message string)
	ClearFieldError(field string)
	SetBusy(busy bool)
	ResetFields()
}

// Notifier surfaces a transient status message.  Dismissal is its concern.
type Notifier interface {
	Notify(message string, kind Kind)
}

type nopPresenter struct{}

func (nopPresenter) ShowFieldError(string, string) {}
func (nopPresenter) ClearFieldError(string)        {}
func (nopPresenter) SetBusy(bool)                  {}
func (nopPresenter) ResetFields()                  {}

type nopNotifier struct{}

func (nopNotifier) Notify(string, Kind) {}

// Default notification texts.
const (
	DefaultSuccessMessage = "Message sent successfully! I'll get back to you soon."
	DefaultFailureMessage = "Error! Please try again."
)

// -----------------------------------------------------------------------------
// Options
// -----------------------------------------------------------------------------

// Option configures a Controller.
type Option func(*Controller)

func WithPresenter(p Presenter) Option { return func(c *Controller) { c.view = p } }

func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notify = n } }

// WithTimeout bounds each gateway call.  Zero means no bound.
func WithTimeout(d time.Duration) Option { return func(c *Controller) { c.timeout = d } }

func WithLogger(l *zap.SugaredLogger) Option { return func(c *Controller) { c.log = l } }

// WithPhaseHook registers fn to observe every phase transition.
func WithPhaseHook(fn func(from, to Phase)) Option { return func(c *Controller) { c.onPhase = fn } }

// WithSuccessHook registers fn to run after a successful attempt has been
// applied.  fn runs outside the Controller's lock.
func WithSuccessHook(fn func(ctx context.Context, p Payload)) Option {
	return func(c *Controller) { c.onSuccess = fn }
}

// WithMessages overrides the success and failure notification texts.  Empty
// strings keep the defaults.
func WithMessages(success, failure string) Option {
	return func(c *Controller) {
		if success != "" {
			c.successMsg = success
		}
		if failure != "" {
			c.failureMsg = failure
		}
	}
}

// -----------------------------------------------------------------------------
// Controller
// -----------------------------------------------------------------------------

// Controller coordinates validation and submission for one form instance.
// It is safe for concurrent use.
type Controller struct {
	def        *FormDef
	gw         Gateway
	view       Presenter
	notify     Notifier
	timeout    time.Duration
	log        *zap.SugaredLogger
	onPhase    func(from, to Phase)
	onSuccess  func(context.Context, Payload)
	successMsg string
	failureMsg string

	mu       sync.Mutex
	phase    Phase
	values   map[string]string
	verdicts map[string]Verdict
	inflight *Attempt
}

// NewController returns an Idle Controller for def that relays through gw.
func NewController(def *FormDef, gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		def:        def,
		gw:         gw,
		view:       nopPresenter{},
		notify:     nopNotifier{},
		log:        zap.S(),
		successMsg: DefaultSuccessMessage,
		failureMsg: DefaultFailureMessage,
		values:     make(map[string]string, len(def.Fields)),
		verdicts:   make(map[string]Verdict, len(def.Fields)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Def returns the form definition.
func (c *Controller) Def() *FormDef { return c.def }

// OnFieldBlur stores raw as the field's value, validates it, and shows or
// clears the field error.
func (c *Controller) OnFieldBlur(name, raw string) (Verdict, error) {
	spec, ok := c.def.Field(name)
	if !ok {
		return Verdict{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[name] = raw
	v := Validate(spec, raw)
	c.record(v)
	return v, nil
}

// OnFieldInput stores raw as the field's value and clears any stored error
// for it.  Errors reappear only after the next blur or submit.
func (c *Controller) OnFieldInput(name, raw string) error {
	if _, ok := c.def.Field(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[name] = raw
	if v, ok := c.verdicts[name]; ok && !v.Valid {
		delete(c.verdicts, name)
	}
	c.view.ClearFieldError(name)
	return nil
}

// OnSubmit validates every field of values.  Fields missing from values are
// treated as empty.  On success it returns the started Attempt; otherwise a
// *ValidationError or ErrSubmissionInFlight.
func (c *Controller) OnSubmit(ctx context.Context, values map[string]string) (*Attempt, error) {
	c.mu.Lock()

	if c.phase == PhaseSubmitting {
		pending := c.inflight.ID
		c.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		c.log.Warnw("submit rejected", "form", c.def.ID, "pending", pending)
		return nil, ErrSubmissionInFlight
	}

	var invalid []Verdict
	for _, f := range c.def.Fields {
		c.values[f.Name] = values[f.Name]
		v := Validate(f, c.values[f.Name])
		c.record(v)
		if !v.Valid {
			invalid = append(invalid, v)
		}
	}
	if len(invalid) > 0 {
		c.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, &ValidationError{Fields: invalid}
	}

	att := newAttempt(ctx, payloadFrom(c.values))
	c.inflight = att
	c.transition(PhaseSubmitting)
	c.view.SetBusy(true)
	c.mu.Unlock()

	c.log.Infow("submission started", "form", c.def.ID, "attempt", att.ID)
	go c.dispatch(att)
	return att, nil
}

// OnSubmissionResult applies the outcome of the in-flight attempt.  Results
// for any other attempt are rejected with ErrNoSubmissionInFlight.
func (c *Controller) OnSubmissionResult(res Result) error {
	c.mu.Lock()

	att := c.inflight
	if c.phase != PhaseSubmitting || att == nil || att.ID != res.AttemptID {
		c.mu.Unlock()
		return ErrNoSubmissionInFlight
	}
	c.inflight = nil
	c.view.SetBusy(false)

	if res.OK() {
		c.transition(PhaseSucceeded)
		clear(c.values)
		clear(c.verdicts)
		c.view.ResetFields()
		c.notify.Notify(c.successMsg, KindSuccess)
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeSucceeded).Inc()
		c.log.Infow("submission succeeded", "form", c.def.ID, "attempt", att.ID,
			"elapsed", time.Since(att.StartedAt))
	} else {
		c.transition(PhaseFailed)
		c.notify.Notify(c.failureMsg, KindError)
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		c.log.Errorw("submission failed", "form", c.def.ID, "attempt", att.ID, "error", res.Err)
	}
	c.transition(PhaseIdle)
	c.mu.Unlock()

	att.finish(res)

	if res.OK() && c.onSuccess != nil {
		c.onSuccess(att.ctx, att.Payload)
	}
	return nil
}

// Notice returns the notification text and kind for res.  Callers that
// answer one attempt use it instead of whatever the Notifier last showed.
func (c *Controller) Notice(res Result) (string, Kind) {
	if res.OK() {
		return c.successMsg, KindSuccess
	}
	return c.failureMsg, KindError
}

// Phase reports the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Busy reports whether an attempt is in flight.
func (c *Controller) Busy() bool { return c.Phase() == PhaseSubmitting }

// Values returns a copy of the current field values.
func (c *Controller) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Verdicts returns a copy of the stored verdicts keyed by field name.
func (c *Controller) Verdicts() map[string]Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Verdict, len(c.verdicts))
	for k, v := range c.verdicts {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

// dispatch runs the gateway call for att and applies its Result.
func (c *Controller) dispatch(att *Attempt) {
	ctx := att.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// The gateway runs on its own goroutine so a call that ignores ctx still
	// cannot hold the form past its deadline.
	errc := make(chan error, 1)
	go func() { errc <- c.gw.Submit(ctx, att.Payload) }()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", ErrTimeout, c.timeout, err)
		}
		err = &SubmissionError{AttemptID: att.ID, Cause: err}
	}

	if aerr := c.OnSubmissionResult(Result{AttemptID: att.ID, Err: err}); aerr != nil {
		c.log.Warnw("submission result discarded", "form", c.def.ID, "attempt", att.ID, "error", aerr)
	}
}

// record stores v and forwards it to the Presenter.  Caller holds c.mu.
func (c *Controller) record(v Verdict) {
	c.verdicts[v.Field] = v
	if v.Valid {
		c.view.ClearFieldError(v.Field)
		return
	}
	c.view.ShowFieldError(v.Field, v.Message)
	metrics.ValidationFailuresTotal.WithLabelValues(v.Field, string(v.Rule)).Inc()
}

// transition moves to next and reports it.  Caller holds c.mu.
func (c *Controller) transition(next Phase) {
	prev := c.phase
	c.phase = next
	if c.onPhase != nil {
		c.onPhase(prev, next)
	}
	c.log.Debugw("form phase", "form", c.def.ID, "from", prev, "to", next)
}
