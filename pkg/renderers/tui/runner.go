package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/submission"
	"github.com/goliatone/go-formwizard/pkg/validation"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

const (
	choiceContinue = "Continue"
	choiceSubmit   = "Submit request"
	choiceBack     = "« Back"

	successTitle  = "Thank you for your submission!"
	successDetail = "We've received your care request and one of our specialists will contact you within 24 hours."
)

// Runner walks a wizard session through terminal prompts. It only feeds user
// input into the wizard and the controller; every rule lives in those.
type Runner struct {
	driver PromptDriver
	format payload.Format
	out    io.Writer
	theme  Theme
	logger *zap.Logger
}

// New constructs a Runner. Without WithPromptDriver it prompts on the
// controlling terminal through survey.
func New(options ...Option) *Runner {
	r := &Runner{
		format: payload.FormatPretty,
		theme:  DefaultTheme,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Run prompts step by step until the controller reports a successful
// submission, the user gives up on a failed one, or the driver fails.
func (r *Runner) Run(ctx context.Context, w *wizard.Wizard, c *submission.Controller) (submission.Result, error) {
	if w == nil || c == nil {
		return submission.Result{}, ErrNilSession
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cancel := c.Subscribe(func(evt submission.Event) {
		r.onSubmissionEvent(ctx, evt)
	})
	defer cancel()

	def := w.Definition()
	if def.Title != "" {
		if err := r.info(ctx, def.Title); err != nil {
			return submission.Result{}, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return submission.Result{}, err
		}
		state := w.State()
		step, ok := def.Step(state.Current)
		if !ok {
			return submission.Result{}, fmt.Errorf("tui: step %d is not defined", state.Current)
		}
		header := fmt.Sprintf("Step %d of %d (%.0f%%): %s", state.Current, state.Total, state.Percent(), stepTitle(step))
		if err := r.info(ctx, header); err != nil {
			return submission.Result{}, err
		}

		back, err := r.promptStep(ctx, w, step, state)
		if err != nil {
			return submission.Result{}, err
		}
		if back {
			w.Retreat()
			continue
		}

		if !state.Last() {
			if t := w.Advance(); !t.OK() {
				if err := r.reportIncomplete(ctx, t.Err); err != nil {
					return submission.Result{}, err
				}
			}
			continue
		}

		res, done, err := r.submit(ctx, c)
		if done || err != nil {
			return res, err
		}
	}
}

func (r *Runner) promptStep(ctx context.Context, w *wizard.Wizard, step model.Step, state wizard.State) (bool, error) {
	switch step.Kind {
	case model.StepKindSingle:
		return r.promptSingle(ctx, w, step, state)
	case model.StepKindMulti:
		if err := r.promptMulti(ctx, w, step); err != nil {
			return false, err
		}
	case model.StepKindFields:
		if err := r.promptFields(ctx, w, step); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("tui: unsupported step kind %q", step.Kind)
	}
	return r.promptNavigation(ctx, state)
}

func (r *Runner) promptSingle(ctx context.Context, w *wizard.Wizard, step model.Step, state wizard.State) (bool, error) {
	labels, descriptions := optionLabels(step.Options)
	if !state.First() {
		labels = append(labels, choiceBack)
		descriptions = append(descriptions, "")
	}
	current, _ := w.Selections().Single(step.ID)
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      stepMessage(step),
		Options:      labels,
		Descriptions: descriptions,
		DefaultIndex: optionIndex(step.Options, current),
	})
	if err != nil {
		return false, err
	}
	if idx < 0 || idx > len(step.Options) {
		return false, fmt.Errorf("tui: selection %d out of range", idx)
	}
	if idx == len(step.Options) {
		return true, nil
	}
	if err := w.SelectOption(step.ID, step.Options[idx].Value); err != nil {
		return false, err
	}
	return false, nil
}

func (r *Runner) promptMulti(ctx context.Context, w *wizard.Wizard, step model.Step) error {
	labels, _ := optionLabels(step.Options)
	var defaults []int
	for _, value := range w.Selections().Multi(step.ID) {
		if idx := optionIndex(step.Options, value); idx >= 0 {
			defaults = append(defaults, idx)
		}
	}
	picked, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  stepMessage(step),
		Options:  labels,
		Defaults: defaults,
	})
	if err != nil {
		return err
	}
	checked := make(map[int]bool, len(picked))
	for _, idx := range picked {
		if idx < 0 || idx >= len(step.Options) {
			return fmt.Errorf("tui: selection %d out of range", idx)
		}
		checked[idx] = true
	}
	for i, opt := range step.Options {
		if err := w.ToggleOption(step.ID, opt.Value, checked[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) promptFields(ctx context.Context, w *wizard.Wizard, step model.Step) error {
	if step.Description != "" {
		if err := r.info(ctx, step.Description); err != nil {
			return err
		}
	}
	for _, field := range step.Fields {
		value, err := r.promptField(ctx, w, field)
		if err != nil {
			return err
		}
		if err := w.SetField(field.Name, value); err != nil {
			return err
		}
		w.Blur(field.Name)
	}
	return nil
}

func (r *Runner) promptField(ctx context.Context, w *wizard.Wizard, field model.Field) (string, error) {
	kind := validation.KindFor(field.Name, field.InputType)
	current, _ := w.Field(field.Name)
	message := field.DisplayLabel()
	if field.Required {
		message += " *"
	}
	validate := func(raw string) error {
		return validation.Check(kind, raw, field.Required)
	}

	if field.InputType != "textarea" {
		return r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   current,
			Help:      field.Placeholder,
			Validator: validate,
		})
	}

	// survey's multiline prompt has no validator hook.
	for {
		value, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: current,
			Help:    field.Placeholder,
		})
		if err != nil {
			return "", err
		}
		if err := validate(value); err != nil {
			if err := r.errorf(ctx, "%s: %s", field.DisplayLabel(), err); err != nil {
				return "", err
			}
			continue
		}
		return value, nil
	}
}

func (r *Runner) promptNavigation(ctx context.Context, state wizard.State) (bool, error) {
	if state.First() {
		return false, nil
	}
	forward := choiceContinue
	if state.Last() {
		forward = choiceSubmit
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message: "What next?",
		Options: []string{forward, choiceBack},
	})
	if err != nil {
		return false, err
	}
	return idx == 1, nil
}

// submit returns done=true once the session should end.
func (r *Runner) submit(ctx context.Context, c *submission.Controller) (submission.Result, bool, error) {
	for {
		res := c.Submit(ctx)
		switch res.Status {
		case submission.StatusSucceeded:
			return res, true, r.reportSuccess(ctx, res)
		case submission.StatusRejected:
			return res, false, r.reportIncomplete(ctx, res.Err)
		case submission.StatusIgnored:
			return res, true, res.Err
		}

		if err := ctx.Err(); err != nil {
			return res, true, err
		}
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: "Try again?",
			Default: true,
		})
		if err != nil {
			return res, true, err
		}
		if !retry {
			return res, true, fmt.Errorf("%w: %w", ErrGaveUp, res.Err)
		}
		c.DismissError()
	}
}

func (r *Runner) reportSuccess(ctx context.Context, res submission.Result) error {
	lines := []string{
		r.theme.SuccessPrefix + successTitle,
		successDetail,
		"Reference ID: #" + res.Reference,
	}
	for _, line := range lines {
		if err := r.info(ctx, line); err != nil {
			return err
		}
	}
	if r.out == nil {
		return nil
	}
	encoded, err := r.format.Encode(res.Payload)
	if err != nil {
		return err
	}
	if _, err := r.out.Write(encoded); err != nil {
		return fmt.Errorf("tui: write payload: %w", err)
	}
	return nil
}

func (r *Runner) reportIncomplete(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var incomplete *wizard.IncompleteError
	if errors.As(err, &incomplete) {
		return r.errorf(ctx, "%s", incomplete.Message)
	}
	return r.errorf(ctx, "%s", err)
}

func (r *Runner) onSubmissionEvent(ctx context.Context, evt submission.Event) {
	var err error
	switch e := evt.(type) {
	case submission.LoadingChanged:
		if e.Loading {
			err = r.info(ctx, "Submitting your request...")
		}
	case submission.Failed:
		err = r.errorf(ctx, "%s (%s)", e.Message, e.Reason)
	}
	if err != nil {
		r.logger.Warn("tui: print submission event", zap.String("event", evt.EventName()), zap.Error(err))
	}
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) errorf(ctx context.Context, format string, args ...any) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func stepTitle(step model.Step) string {
	if step.Title != "" {
		return step.Title
	}
	return step.ID
}

func stepMessage(step model.Step) string {
	if msg := strings.TrimSpace(step.Description); msg != "" {
		return msg
	}
	return stepTitle(step)
}

func optionLabels(options []model.Option) ([]string, []string) {
	labels := make([]string, 0, len(options)+1)
	descriptions := make([]string, 0, len(options)+1)
	for _, opt := range options {
		labels = append(labels, opt.DisplayLabel())
		descriptions = append(descriptions, opt.Description)
	}
	return labels, descriptions
}

func optionIndex(options []model.Option, value string) int {
	if value == "" {
		return -1
	}
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}
