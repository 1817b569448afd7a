package submission_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/definition"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/submission"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

type eventLog struct {
	mu     sync.Mutex
	events []submission.Event
}

func (l *eventLog) record(ev submission.Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.EventName())
	}
	return out
}

func (l *eventLog) failures() []submission.Failed {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []submission.Failed
	for _, ev := range l.events {
		if f, ok := ev.(submission.Failed); ok {
			out = append(out, f)
		}
	}
	return out
}

func (l *eventLog) reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}

func newWizard(t *testing.T) *wizard.Wizard {
	t.Helper()
	w, err := wizard.New(definition.MustCareIntake(),
		wizard.WithScheduler(testsupport.NewManualScheduler()),
		wizard.WithoutAutoAdvance(),
	)
	if err != nil {
		t.Fatalf("wizard.New: %v", err)
	}
	return w
}

// completeWizard fills every step and lands on the final one.
func completeWizard(t *testing.T, w *wizard.Wizard) {
	t.Helper()
	steps := []func() error{
		func() error { return w.SelectOption("care-type", "visiting") },
		func() error { return w.ToggleOption("care-needs", "meals", true) },
		func() error {
			w.Prefill(map[string]string{"postcode": "SW1A 1AA", "city": "London"})
			return nil
		},
		func() error { return w.SelectOption("start-time", "within-week") },
	}
	for i, fill := range steps {
		if err := fill(); err != nil {
			t.Fatalf("fill step %d: %v", i+1, err)
		}
		if tr := w.Advance(); !tr.Moved {
			t.Fatalf("advance from %d: %+v", i+1, tr)
		}
	}
	w.Prefill(map[string]string{
		"full_name": "John Doe",
		"email":     "john.doe@example.com",
		"phone":     "07123456789",
	})
}

func newController(t *testing.T, transport submission.Transport, opts ...submission.Option) (*submission.Controller, *wizard.Wizard, *eventLog) {
	t.Helper()
	w := newWizard(t)
	c, err := submission.New(w, transport, opts...)
	if err != nil {
		t.Fatalf("submission.New: %v", err)
	}
	log := &eventLog{}
	c.Subscribe(log.record)
	return c, w, log
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := submission.New(nil, testsupport.NewRecordingTransport()); !errors.Is(err, submission.ErrNilWizard) {
		t.Fatalf("expected ErrNilWizard, got %v", err)
	}
	if _, err := submission.New(newWizard(t), nil); !errors.Is(err, submission.ErrNilTransport) {
		t.Fatalf("expected ErrNilTransport, got %v", err)
	}
}

func TestSubmitSuccess(t *testing.T) {
	transport := testsupport.NewRecordingTransport()
	c, w, log := newController(t, transport,
		submission.WithTokens(submission.TokenFunc(func() string { return "ABC123XYZ" })),
	)
	completeWizard(t, w)

	res := c.Submit(context.Background())
	if res.Status != submission.StatusSucceeded || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Reference != "ABC123XYZ" {
		t.Fatalf("unexpected reference %q", res.Reference)
	}
	if !w.Completed() {
		t.Fatalf("wizard should be completed")
	}
	if ref, ok := c.Reference(); !ok || ref != "ABC123XYZ" {
		t.Fatalf("Reference() = %q, %v", ref, ok)
	}

	want := []string{
		"submission.phase",   // validating
		"submission.phase",   // submitting
		"submission.loading", // on
		"submission.loading", // off
		"submission.phase",   // succeeded
		"submission.succeeded",
	}
	if diff := cmp.Diff(want, log.names()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}

	sent := transport.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sent))
	}
	if v, _ := sent[0].Get("Care-Needs"); v != "meals" {
		t.Fatalf("unexpected Care-Needs %q", v)
	}

	again := c.Submit(context.Background())
	if again.Status != submission.StatusIgnored || !errors.Is(again.Err, submission.ErrAlreadySubmitted) {
		t.Fatalf("second submit must be ignored, got %+v", again)
	}
	if transport.Calls() != 1 {
		t.Fatalf("transport called again after success")
	}
}

func TestSubmitBeforeFinalStep(t *testing.T) {
	transport := testsupport.NewRecordingTransport()
	c, _, _ := newController(t, transport)

	res := c.Submit(context.Background())
	if res.Status != submission.StatusRejected || !errors.Is(res.Err, submission.ErrNotFinalStep) {
		t.Fatalf("expected ErrNotFinalStep rejection, got %+v", res)
	}
	if transport.Calls() != 0 {
		t.Fatalf("transport must not be called")
	}
}

func TestSubmitIncompleteFinalStep(t *testing.T) {
	transport := testsupport.NewRecordingTransport()
	c, w, _ := newController(t, transport)
	completeWizard(t, w)
	if err := w.SetField("email", "nope"); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	res := c.Submit(context.Background())
	if res.Status != submission.StatusRejected || !errors.Is(res.Err, wizard.ErrStepIncomplete) {
		t.Fatalf("expected incomplete rejection, got %+v", res)
	}
	if transport.Calls() != 0 {
		t.Fatalf("transport must not be called on rejection")
	}
	if c.Phase() != submission.PhaseIdle {
		t.Fatalf("expected idle after rejection, got %s", c.Phase())
	}
	n, ok := w.Notification(5)
	if !ok || n.Message != "Please complete all required fields before continuing." {
		t.Fatalf("expected step notification, got %+v (%v)", n, ok)
	}
}

func TestSubmitFailureThenRetry(t *testing.T) {
	transport := testsupport.NewRecordingTransport()
	transport.FailNext(errors.New("connection refused"))
	c, w, log := newController(t, transport)
	completeWizard(t, w)

	res := c.Submit(context.Background())
	if res.Status != submission.StatusFailed {
		t.Fatalf("expected failure, got %+v", res)
	}
	if c.Phase() != submission.PhaseIdle {
		t.Fatalf("expected idle after failure, got %s", c.Phase())
	}
	if w.Completed() || w.State().Current != 5 {
		t.Fatalf("failure must keep the session on the final step")
	}
	failures := log.failures()
	if len(failures) != 1 {
		t.Fatalf("expected one Failed event, got %d", len(failures))
	}
	if failures[0].Step != 5 || failures[0].Reason != "connection refused" || failures[0].Message != submission.FailureMessage {
		t.Fatalf("unexpected failure %+v", failures[0])
	}
	if _, ok := c.Failure(); !ok {
		t.Fatalf("expected an undismissed failure")
	}

	log.reset()
	retry := c.Submit(context.Background())
	if retry.Status != submission.StatusSucceeded {
		t.Fatalf("expected retry to succeed, got %+v", retry)
	}
	if names := log.names(); len(names) < 2 || names[1] != "submission.error_dismissed" {
		t.Fatalf("retry should dismiss the previous error first, got %v", names)
	}

	sent := transport.Sent()
	if len(sent) != 2 || !sent[0].Equal(sent[1]) {
		t.Fatalf("retry payload differs:\n%v\n%v", sent[0].Entries(), sent[1].Entries())
	}
}

func TestDismissError(t *testing.T) {
	transport := testsupport.NewRecordingTransport()
	transport.FailNext(errors.New("boom"))
	c, w, log := newController(t, transport)
	completeWizard(t, w)
	c.Submit(context.Background())

	log.reset()
	c.DismissError()
	c.DismissError()
	if diff := cmp.Diff([]string{"submission.error_dismissed"}, log.names()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if _, ok := c.Failure(); ok {
		t.Fatalf("failure should be cleared")
	}
}

func TestSubmitWhileInFlightIsIgnored(t *testing.T) {
	transport := testsupport.NewRecordingTransport()
	release := transport.Hold()
	t.Cleanup(release)
	c, w, _ := newController(t, transport)
	completeWizard(t, w)

	done := make(chan submission.Result, 1)
	go func() { done <- c.Submit(context.Background()) }()

	select {
	case <-transport.Started():
	case <-time.After(2 * time.Second):
		t.Fatalf("transport was never called")
	}

	second := c.Submit(context.Background())
	if second.Status != submission.StatusIgnored || !errors.Is(second.Err, submission.ErrInProgress) {
		t.Fatalf("expected ignored submit, got %+v", second)
	}
	if err := c.Reset(); !errors.Is(err, submission.ErrInProgress) {
		t.Fatalf("expected Reset to refuse while submitting, got %v", err)
	}

	release()
	select {
	case res := <-done:
		if res.Status != submission.StatusSucceeded {
			t.Fatalf("expected success, got %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("submission never finished")
	}
	if transport.Calls() != 1 {
		t.Fatalf("expected a single transport call, got %d", transport.Calls())
	}
}

func TestSubmitTimeout(t *testing.T) {
	transport := submission.TransportFunc(func(ctx context.Context, _ payload.Payload) (submission.Receipt, error) {
		<-ctx.Done()
		return submission.Receipt{}, ctx.Err()
	})
	c, w, log := newController(t, transport, submission.WithTimeout(20*time.Millisecond))
	completeWizard(t, w)

	res := c.Submit(context.Background())
	if res.Status != submission.StatusFailed || !errors.Is(res.Err, submission.ErrTimeout) {
		t.Fatalf("expected timeout failure, got %+v", res)
	}
	failures := log.failures()
	if len(failures) != 1 || failures[0].Reason != "submission timed out" {
		t.Fatalf("unexpected failures %+v", failures)
	}
}

func TestSubmitTimeoutWithUnresponsiveTransport(t *testing.T) {
	stuck := make(chan struct{})
	t.Cleanup(func() { close(stuck) })
	transport := submission.TransportFunc(func(context.Context, payload.Payload) (submission.Receipt, error) {
		<-stuck
		return submission.Receipt{}, nil
	})
	c, w, _ := newController(t, transport, submission.WithTimeout(20*time.Millisecond))
	completeWizard(t, w)

	res := c.Submit(context.Background())
	if !errors.Is(res.Err, submission.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %+v", res)
	}
}

func TestSubmitCancelled(t *testing.T) {
	transport := testsupport.NewRecordingTransport()
	release := transport.Hold()
	t.Cleanup(release)
	c, w, log := newController(t, transport)
	completeWizard(t, w)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-transport.Started()
		cancel()
	}()
	res := c.Submit(ctx)
	if res.Status != submission.StatusFailed || !errors.Is(res.Err, submission.ErrCancelled) {
		t.Fatalf("expected cancellation, got %+v", res)
	}
	if f := log.failures(); len(f) != 1 || f[0].Reason != "submission cancelled" {
		t.Fatalf("unexpected failures %+v", f)
	}
}

func TestResetStartsFreshSession(t *testing.T) {
	transport := testsupport.NewRecordingTransport()
	c, w, _ := newController(t, transport)
	completeWizard(t, w)
	if res := c.Submit(context.Background()); res.Status != submission.StatusSucceeded {
		t.Fatalf("submit: %+v", res)
	}

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if c.Phase() != submission.PhaseIdle {
		t.Fatalf("expected idle, got %s", c.Phase())
	}
	if _, ok := c.Reference(); ok {
		t.Fatalf("reference should be cleared")
	}
	snap := w.Snapshot()
	if snap.Completed || snap.State.Current != 1 || len(snap.Fields) != 0 {
		t.Fatalf("wizard not reset: %+v", snap)
	}

	completeWizard(t, w)
	res := c.Submit(context.Background())
	if res.Status != submission.StatusSucceeded {
		t.Fatalf("second session submit: %+v", res)
	}
	if len(res.Reference) != submission.ReferenceLength || strings.ToUpper(res.Reference) != res.Reference {
		t.Fatalf("unexpected reference %q", res.Reference)
	}
}
