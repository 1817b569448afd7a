package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/internal/signal"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

const tracerName = "github.com/goliatone/go-formwizard/pkg/submission"

// Result reports the outcome of one Submit call.
type Result struct {
	Status    Status
	Reference string
	Payload   payload.Payload
	Receipt   Receipt
	Err       error
}

// Controller owns the submission lifecycle of one wizard session.
type Controller struct {
	mu sync.Mutex

	wiz       *wizard.Wizard
	transport Transport
	tokens    TokenGenerator
	timeout   time.Duration
	logger    *zap.Logger
	recorder  Recorder
	tracer    trace.Tracer

	phase     Phase
	reference string
	failure   *Failed

	events signal.Hub[Event]
}

// New wires a controller to a wizard and a transport.
func New(w *wizard.Wizard, t Transport, options ...Option) (*Controller, error) {
	if w == nil {
		return nil, ErrNilWizard
	}
	if t == nil {
		return nil, ErrNilTransport
	}
	c := &Controller{
		wiz:       w,
		transport: t,
		tokens:    NewUUIDTokens(),
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
		recorder:  nopRecorder{},
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Subscribe registers fn for controller events.
func (c *Controller) Subscribe(fn func(Event)) func() {
	return c.events.Subscribe(fn)
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Reference returns the reference of a successful submission.
func (c *Controller) Reference() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reference, c.phase == PhaseSucceeded
}

// Failure returns the undismissed error of the last failed submission.
func (c *Controller) Failure() (Failed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure == nil {
		return Failed{}, false
	}
	return *c.failure, true
}

// Submit validates the wizard and sends its payload. See the package
// documentation for the lifecycle.
func (c *Controller) Submit(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	switch c.phase {
	case PhaseValidating, PhaseSubmitting:
		c.mu.Unlock()
		return Result{Status: StatusIgnored, Err: ErrInProgress}
	case PhaseSucceeded:
		c.mu.Unlock()
		return Result{Status: StatusIgnored, Err: ErrAlreadySubmitted}
	}
	state := c.wiz.State()
	if !state.Last() {
		c.mu.Unlock()
		return Result{Status: StatusRejected, Err: fmt.Errorf("%w: on step %d of %d", ErrNotFinalStep, state.Current, state.Total)}
	}
	started := time.Now()
	events := []Event{c.setPhaseLocked(PhaseValidating)}
	c.mu.Unlock()
	c.publish(events)

	if err := c.wiz.RequireComplete(); err != nil {
		c.mu.Lock()
		events = []Event{c.setPhaseLocked(PhaseRejected), c.setPhaseLocked(PhaseIdle)}
		c.mu.Unlock()
		c.publish(events)
		c.recorder.ObserveSubmission(StatusRejected, time.Since(started))
		c.logger.Debug("submission: rejected", zap.Error(err))
		return Result{Status: StatusRejected, Err: err}
	}

	p := payload.Build(c.wiz.Definition(), c.wiz.Fields(), c.wiz.Selections())

	c.mu.Lock()
	events = nil
	if dismissed := c.dismissLocked(); dismissed != nil {
		events = append(events, dismissed)
	}
	events = append(events, c.setPhaseLocked(PhaseSubmitting), LoadingChanged{Loading: true})
	c.mu.Unlock()
	c.publish(events)

	c.logger.Info("submission: sending", zap.Int("entries", p.Len()))
	ctx, span := c.tracer.Start(ctx, "submission.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("wizard.id", c.wiz.Definition().ID),
			attribute.Int("payload.entries", p.Len()),
		),
	)
	receipt, err := c.send(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, reasonFor(err))
		span.End()
		return c.fail(state.Current, p, err, started)
	}
	span.SetAttributes(attribute.Int("receipt.status_code", receipt.StatusCode))
	span.End()
	return c.succeed(p, receipt, started)
}

func (c *Controller) send(ctx context.Context, p payload.Payload) (Receipt, error) {
	sendCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type outcome struct {
		receipt Receipt
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		receipt, err := c.transport.Send(sendCtx, p)
		done <- outcome{receipt: receipt, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-sendCtx.Done():
		res = outcome{err: sendCtx.Err()}
	}
	if res.err == nil {
		return res.receipt, nil
	}

	switch {
	case ctx.Err() != nil:
		return Receipt{}, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case errors.Is(sendCtx.Err(), context.DeadlineExceeded):
		return Receipt{}, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	default:
		return res.receipt, res.err
	}
}

func (c *Controller) succeed(p payload.Payload, receipt Receipt, started time.Time) Result {
	reference := c.tokens.Token()

	c.mu.Lock()
	c.reference = reference
	events := []Event{
		LoadingChanged{Loading: false},
		c.setPhaseLocked(PhaseSucceeded),
		Succeeded{Reference: reference, Payload: p, Receipt: receipt},
	}
	c.mu.Unlock()
	c.publish(events)

	c.wiz.Complete()
	c.recorder.ObserveSubmission(StatusSucceeded, time.Since(started))
	c.logger.Info("submission: succeeded", zap.String("reference", reference))
	return Result{Status: StatusSucceeded, Reference: reference, Payload: p, Receipt: receipt}
}

func (c *Controller) fail(step int, p payload.Payload, err error, started time.Time) Result {
	failed := Failed{
		Step:    step,
		Reason:  reasonFor(err),
		Message: FailureMessage,
		Err:     err,
	}

	c.mu.Lock()
	c.failure = &failed
	events := []Event{
		LoadingChanged{Loading: false},
		c.setPhaseLocked(PhaseFailed),
		failed,
		c.setPhaseLocked(PhaseIdle),
	}
	c.mu.Unlock()
	c.publish(events)

	c.recorder.ObserveSubmission(StatusFailed, time.Since(started))
	c.logger.Warn("submission: failed", zap.Int("step", step), zap.Error(err))
	return Result{Status: StatusFailed, Payload: p, Err: err}
}

// DismissError clears the error left by a failed submission.
func (c *Controller) DismissError() {
	c.mu.Lock()
	ev := c.dismissLocked()
	c.mu.Unlock()
	if ev != nil {
		c.publish([]Event{ev})
	}
}

// Reset starts a fresh session: the wizard returns to step 1 with no data and
// the controller returns to idle. It fails while a submission is in flight.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.phase == PhaseValidating || c.phase == PhaseSubmitting {
		c.mu.Unlock()
		return ErrInProgress
	}
	var events []Event
	if ev := c.dismissLocked(); ev != nil {
		events = append(events, ev)
	}
	c.reference = ""
	if c.phase != PhaseIdle {
		events = append(events, c.setPhaseLocked(PhaseIdle))
	}
	c.mu.Unlock()

	c.wiz.Reset()
	c.publish(events)
	return nil
}

func (c *Controller) setPhaseLocked(next Phase) Event {
	prev := c.phase
	c.phase = next
	return PhaseChanged{From: prev, To: next}
}

func (c *Controller) dismissLocked() Event {
	if c.failure == nil {
		return nil
	}
	step := c.failure.Step
	c.failure = nil
	return ErrorDismissed{Step: step}
}

func (c *Controller) publish(events []Event) {
	for _, ev := range events {
		c.events.Emit(ev)
	}
}
