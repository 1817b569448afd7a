package tui_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/definition"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/submission"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// stubDriver replays scripted answers. Input answers rejected by the prompt
// validator are recorded and the next answer is used, like survey re-asking.
type stubDriver struct {
	selects   []int
	multis    [][]int
	inputs    []string
	textareas []string
	confirms  []bool

	selectConfigs []tui.SelectConfig
	rejected      []string
	infos         []string
	failOn        string
}

func (s *stubDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	if s.failOn == "input" {
		return "", tui.ErrAborted
	}
	for len(s.inputs) > 0 {
		value := s.inputs[0]
		s.inputs = s.inputs[1:]
		if cfg.Validator != nil {
			if err := cfg.Validator(value); err != nil {
				s.rejected = append(s.rejected, cfg.Message+": "+err.Error())
				continue
			}
		}
		return value, nil
	}
	return "", errors.New("stub: no input scripted")
}

func (s *stubDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	if len(s.confirms) == 0 {
		return false, errors.New("stub: no confirm scripted")
	}
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func (s *stubDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	s.selectConfigs = append(s.selectConfigs, cfg)
	if len(s.selects) == 0 {
		return 0, errors.New("stub: no select scripted")
	}
	v := s.selects[0]
	s.selects = s.selects[1:]
	return v, nil
}

func (s *stubDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	if len(s.multis) == 0 {
		return nil, errors.New("stub: no multi-select scripted")
	}
	v := s.multis[0]
	s.multis = s.multis[1:]
	return v, nil
}

func (s *stubDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	if len(s.textareas) == 0 {
		return "", errors.New("stub: no textarea scripted")
	}
	v := s.textareas[0]
	s.textareas = s.textareas[1:]
	return v, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func (s *stubDriver) printed(substr string) bool {
	for _, line := range s.infos {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

type session struct {
	wiz       *wizard.Wizard
	ctrl      *submission.Controller
	transport *testsupport.RecordingTransport
}

func newSession(t *testing.T) session {
	t.Helper()
	w, err := wizard.New(definition.MustCareIntake(), wizard.WithScheduler(testsupport.NewManualScheduler()))
	if err != nil {
		t.Fatalf("wizard.New: %v", err)
	}
	transport := testsupport.NewRecordingTransport()
	c, err := submission.New(w, transport, submission.WithTokens(submission.TokenFunc(func() string { return "REF000001" })))
	if err != nil {
		t.Fatalf("submission.New: %v", err)
	}
	return session{wiz: w, ctrl: c, transport: transport}
}

// happyScript answers every step of the care-intake flow.
func happyScript() *stubDriver {
	return &stubDriver{
		// care-type, care-needs nav, location nav, start-time, contact nav
		selects:   []int{1, 0, 0, 0, 0},
		multis:    [][]int{{0, 2}},
		inputs:    []string{"SW1A@1AA", "SW1A 1AA", "London", "John Doe", "not-an-email", "john.doe@example.com", "07123456789"},
		textareas: []string{""},
	}
}

func TestRunnerCompletesCareIntake(t *testing.T) {
	s := newSession(t)
	driver := happyScript()
	var out strings.Builder
	runner := tui.New(tui.WithPromptDriver(driver), tui.WithOutput(&out))

	res, err := runner.Run(context.Background(), s.wiz, s.ctrl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != submission.StatusSucceeded {
		t.Fatalf("expected success, got %+v", res)
	}
	if !s.wiz.Completed() {
		t.Fatalf("wizard should be marked complete")
	}

	wantRejected := []string{
		"Postcode *: enter a valid postcode",
		"Email address *: enter a valid email address",
	}
	if diff := cmp.Diff(wantRejected, driver.rejected); diff != "" {
		t.Fatalf("validator rejections mismatch (-want +got):\n%s", diff)
	}

	want := "postcode: SW1A 1AA\ncity: London\nfull_name: John Doe\nemail: john.doe@example.com\nphone: 07123456789\n" +
		"Care-Type: live-in\nCare-Needs: personal-care, medication\nStart-Time: asap\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("payload output mismatch (-want +got):\n%s", diff)
	}
	if got := len(s.transport.Sent()); got != 1 {
		t.Fatalf("expected one send, got %d", got)
	}
	for _, line := range []string{"Step 1 of 5 (20%)", "Step 5 of 5 (100%)", "Submitting your request...", "Thank you for your submission!", "Reference ID: #REF000001"} {
		if !driver.printed(line) {
			t.Fatalf("expected %q in output, got %v", line, driver.infos)
		}
	}
}

func TestRunnerOffersBackAfterFirstStep(t *testing.T) {
	s := newSession(t)
	driver := happyScript()
	// care-type, back from care-needs, care-type again, then the happy path.
	driver.selects = []int{1, 1, 1, 0, 0, 0, 0}
	driver.multis = [][]int{{0}, {0, 2}}

	if _, err := tui.New(tui.WithPromptDriver(driver)).Run(context.Background(), s.wiz, s.ctrl); err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := driver.selectConfigs[0]
	if len(first.Options) != 4 {
		t.Fatalf("first step must not offer back, got %v", first.Options)
	}
	again := driver.selectConfigs[2]
	if again.DefaultIndex != 1 {
		t.Fatalf("revisited step should default to the kept choice, got %d", again.DefaultIndex)
	}
	startTime := driver.selectConfigs[5]
	if last := startTime.Options[len(startTime.Options)-1]; !strings.Contains(last, "Back") {
		t.Fatalf("later single steps should offer back, got %v", startTime.Options)
	}
}

func TestRunnerReportsIncompleteMultiStep(t *testing.T) {
	s := newSession(t)
	driver := happyScript()
	// no care needs picked first, then the usual answer
	driver.multis = [][]int{{}, {0, 2}}
	driver.selects = []int{1, 0, 0, 0, 0, 0}

	if _, err := tui.New(tui.WithPromptDriver(driver)).Run(context.Background(), s.wiz, s.ctrl); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !driver.printed("! Please select at least one care need before continuing.") {
		t.Fatalf("expected incomplete notice, got %v", driver.infos)
	}
}

func TestRunnerRetriesFailedSubmission(t *testing.T) {
	s := newSession(t)
	s.transport.FailNext(errors.New("connection refused"))
	driver := happyScript()
	driver.confirms = []bool{true}

	res, err := tui.New(tui.WithPromptDriver(driver)).Run(context.Background(), s.wiz, s.ctrl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != submission.StatusSucceeded {
		t.Fatalf("expected success after retry, got %+v", res)
	}
	sent := s.transport.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected two sends, got %d", len(sent))
	}
	if !sent[0].Equal(sent[1]) {
		t.Fatalf("retry must resend an identical payload")
	}
	if !driver.printed(submission.FailureMessage + " (connection refused)") {
		t.Fatalf("expected failure notice, got %v", driver.infos)
	}
}

func TestRunnerGivesUpWhenRetryDeclined(t *testing.T) {
	s := newSession(t)
	s.transport.FailNext(errors.New("connection refused"))
	driver := happyScript()
	driver.confirms = []bool{false}

	res, err := tui.New(tui.WithPromptDriver(driver)).Run(context.Background(), s.wiz, s.ctrl)
	if !errors.Is(err, tui.ErrGaveUp) {
		t.Fatalf("expected ErrGaveUp, got %v", err)
	}
	if res.Status != submission.StatusFailed {
		t.Fatalf("expected failed status, got %s", res.Status)
	}
	if s.wiz.Completed() {
		t.Fatalf("failed session must not complete the wizard")
	}
	if got, _ := s.wiz.Field("email"); got != "john.doe@example.com" {
		t.Fatalf("data must be kept after failure, got %q", got)
	}
}

func TestRunnerPropagatesAbort(t *testing.T) {
	s := newSession(t)
	driver := happyScript()
	driver.failOn = "input"

	_, err := tui.New(tui.WithPromptDriver(driver)).Run(context.Background(), s.wiz, s.ctrl)
	if !errors.Is(err, tui.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if got := s.wiz.State().Current; got != 3 {
		t.Fatalf("expected to stop on the location step, got %d", got)
	}
}

func TestRunnerUsesPrefilledDefaults(t *testing.T) {
	s := newSession(t)
	s.wiz.Prefill(definition.DemoValues)
	driver := happyScript()
	driver.inputs = []string{"SW1A 1AA", "London", "John Doe", "john.doe@example.com", "07123456789"}
	var out strings.Builder

	_, err := tui.New(tui.WithPromptDriver(driver), tui.WithOutput(&out), tui.WithOutputFormat(payload.FormatJSON)).
		Run(context.Background(), s.wiz, s.ctrl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(out.String(), `{"postcode":"SW1A 1AA"`) {
		t.Fatalf("expected JSON payload, got %s", out.String())
	}
}

func TestRunnerRequiresSession(t *testing.T) {
	if _, err := tui.New(tui.WithPromptDriver(&stubDriver{})).Run(context.Background(), nil, nil); !errors.Is(err, tui.ErrNilSession) {
		t.Fatalf("expected ErrNilSession, got %v", err)
	}
}
