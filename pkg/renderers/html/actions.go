package html

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// FormActionField is the form key carrying the pressed button's action.
const FormActionField = "action"

// ActionKind names a user interaction, matching the data-action attributes
// emitted by the templates.
type ActionKind string

const (
	ActionNext         ActionKind = "next"
	ActionPrev         ActionKind = "prev"
	ActionSelect       ActionKind = "select"
	ActionToggle       ActionKind = "toggle"
	ActionInput        ActionKind = "input"
	ActionBlur         ActionKind = "blur"
	ActionKey          ActionKind = "key"
	ActionSubmit       ActionKind = "submit"
	ActionReset        ActionKind = "reset"
	ActionDismissError ActionKind = "dismiss-error"
)

// Action is one interaction forwarded from the page.
type Action struct {
	Kind    ActionKind
	Step    string
	Name    string
	Value   string
	Checked bool
}

// Handle forwards a to the attached wizard or controller. Rejections surface
// through events, not through the returned error, which is reserved for
// malformed actions.
func (s *Surface) Handle(ctx context.Context, a Action) error {
	s.mu.Lock()
	w, c := s.wiz, s.ctrl
	s.mu.Unlock()
	if w == nil {
		return ErrNotAttached
	}

	switch a.Kind {
	case ActionNext:
		w.Advance()
	case ActionPrev:
		w.Retreat()
	case ActionSelect:
		return w.SelectOption(a.Step, a.Value)
	case ActionToggle:
		return w.ToggleOption(a.Step, a.Value, a.Checked)
	case ActionInput:
		return w.SetField(a.Name, a.Value)
	case ActionBlur:
		w.Blur(a.Name)
	case ActionKey:
		w.HandleKey(wizard.Key(a.Value))
	case ActionSubmit:
		if c == nil {
			return fmt.Errorf("html: %s without a submission controller", a.Kind)
		}
		c.Submit(ctx)
	case ActionReset:
		if c != nil {
			return c.Reset()
		}
		w.Reset()
	case ActionDismissError:
		if c != nil {
			c.DismissError()
		}
	default:
		return fmt.Errorf("html: unknown action %q", a.Kind)
	}
	return nil
}

// ActionsFromForm translates a posted page into actions: the inputs of the
// current step first, then the pressed button. Inputs of other steps are
// ignored since their sections are hidden.
func ActionsFromForm(def model.Wizard, current int, form url.Values) []Action {
	var actions []Action
	if step, ok := def.Step(current); ok {
		switch step.Kind {
		case model.StepKindSingle:
			if value := form.Get(step.PayloadKey); value != "" {
				actions = append(actions, Action{Kind: ActionSelect, Step: step.ID, Value: value})
			}
		case model.StepKindMulti:
			if _, posted := form[FormActionField]; posted {
				checked := form[step.PayloadKey]
				for _, opt := range step.Options {
					actions = append(actions, Action{
						Kind:    ActionToggle,
						Step:    step.ID,
						Value:   opt.Value,
						Checked: slices.Contains(checked, opt.Value),
					})
				}
			}
		case model.StepKindFields:
			for _, field := range step.Fields {
				values, ok := form[field.Name]
				if !ok {
					continue
				}
				value := ""
				if len(values) > 0 {
					value = values[0]
				}
				actions = append(actions,
					Action{Kind: ActionInput, Name: field.Name, Value: value},
					Action{Kind: ActionBlur, Name: field.Name},
				)
			}
		}
	}
	if kind := form.Get(FormActionField); kind != "" {
		actions = append(actions, Action{Kind: ActionKind(kind)})
	}
	return actions
}

// HandleForm applies a posted page through Handle. Every action runs; the
// errors of malformed ones are joined.
func (s *Surface) HandleForm(ctx context.Context, form url.Values) error {
	s.mu.Lock()
	w := s.wiz
	s.mu.Unlock()
	if w == nil {
		return ErrNotAttached
	}
	var errs []error
	for _, a := range ActionsFromForm(w.Definition(), w.State().Current, form) {
		if err := s.Handle(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
