package model

import (
	"errors"
	"fmt"
	"strings"
)

// StepKind selects the validity rule applied to a step.
type StepKind string

const (
	// StepKindSingle requires exactly one option to be chosen.
	StepKindSingle StepKind = "single"
	// StepKindMulti requires at least one option to be checked.
	StepKindMulti StepKind = "multi"
	// StepKindFields requires every required field to hold a valid value.
	StepKindFields StepKind = "fields"
)

// DefaultIncompleteMessage is shown when a step does not carry its own text.
const DefaultIncompleteMessage = "Please complete all required fields before continuing."

// Wizard is a complete step-by-step form definition.
type Wizard struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step `json:"steps" yaml:"steps"`
}

// Step is one screen of the wizard.
type Step struct {
	ID                string   `json:"id" yaml:"id"`
	Title             string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	Kind              StepKind `json:"kind" yaml:"kind"`
	PayloadKey        string   `json:"payloadKey,omitempty" yaml:"payload_key,omitempty"`
	Options           []Option `json:"options,omitempty" yaml:"options,omitempty"`
	Fields            []Field  `json:"fields,omitempty" yaml:"fields,omitempty"`
	IncompleteMessage string   `json:"incompleteMessage,omitempty" yaml:"incomplete_message,omitempty"`
}

// Option is a selectable card or checkbox.
type Option struct {
	Value       string `json:"value" yaml:"value"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Field is a free-text or typed input.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	InputType   string `json:"inputType,omitempty" yaml:"input_type,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// TotalSteps reports the number of steps.
func (w Wizard) TotalSteps() int {
	return len(w.Steps)
}

// Step returns the 1-based step n.
func (w Wizard) Step(n int) (Step, bool) {
	if n < 1 || n > len(w.Steps) {
		return Step{}, false
	}
	return w.Steps[n-1], true
}

// StepNumber returns the 1-based position of the step with the given id, or 0.
func (w Wizard) StepNumber(id string) int {
	for i, step := range w.Steps {
		if step.ID == id {
			return i + 1
		}
	}
	return 0
}

// Field looks a field up by name across every step and reports the step
// number that owns it.
func (w Wizard) Field(name string) (Field, int, bool) {
	for i, step := range w.Steps {
		for _, field := range step.Fields {
			if field.Name == name {
				return field, i + 1, true
			}
		}
	}
	return Field{}, 0, false
}

// FieldNames lists every declared field name in step order.
func (w Wizard) FieldNames() []string {
	var names []string
	for _, step := range w.Steps {
		for _, field := range step.Fields {
			names = append(names, field.Name)
		}
	}
	return names
}

// Incomplete returns the message shown when the step fails validation.
func (s Step) Incomplete() string {
	if msg := strings.TrimSpace(s.IncompleteMessage); msg != "" {
		return msg
	}
	return DefaultIncompleteMessage
}

// Option returns the option carrying value.
func (s Step) Option(value string) (Option, bool) {
	for _, opt := range s.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// DisplayLabel falls back to the value when no label is set.
func (o Option) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// DisplayLabel falls back to the field name when no label is set.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

var (
	errWizardIDMissing = errors.New("model: wizard id is required")
	errWizardNoSteps   = errors.New("model: wizard requires at least one step")
)

// Validate checks structural rules: unique step ids, known kinds, options and
// payload keys on selection steps, unique field names, and no payload key that
// shadows a field name.
func (w Wizard) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return errWizardIDMissing
	}
	if len(w.Steps) == 0 {
		return errWizardNoSteps
	}

	stepIDs := make(map[string]struct{}, len(w.Steps))
	keys := make(map[string]string)
	for i, step := range w.Steps {
		n := i + 1
		if strings.TrimSpace(step.ID) == "" {
			return fmt.Errorf("model: step %d: id is required", n)
		}
		if _, dup := stepIDs[step.ID]; dup {
			return fmt.Errorf("model: step %d: duplicate id %q", n, step.ID)
		}
		stepIDs[step.ID] = struct{}{}

		switch step.Kind {
		case StepKindSingle, StepKindMulti:
			if len(step.Options) == 0 {
				return fmt.Errorf("model: step %q: %s step requires options", step.ID, step.Kind)
			}
			if strings.TrimSpace(step.PayloadKey) == "" {
				return fmt.Errorf("model: step %q: payload key is required", step.ID)
			}
			values := make(map[string]struct{}, len(step.Options))
			for _, opt := range step.Options {
				if opt.Value == "" {
					return fmt.Errorf("model: step %q: option value is required", step.ID)
				}
				if _, dup := values[opt.Value]; dup {
					return fmt.Errorf("model: step %q: duplicate option %q", step.ID, opt.Value)
				}
				values[opt.Value] = struct{}{}
			}
			if err := claimKey(keys, step.PayloadKey, "step "+step.ID); err != nil {
				return err
			}
		case StepKindFields:
			for _, field := range step.Fields {
				if strings.TrimSpace(field.Name) == "" {
					return fmt.Errorf("model: step %q: field name is required", step.ID)
				}
				if err := claimKey(keys, field.Name, "step "+step.ID); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("model: step %q: unknown kind %q", step.ID, step.Kind)
		}
	}
	return nil
}

func claimKey(keys map[string]string, key, owner string) error {
	if prev, ok := keys[key]; ok {
		return fmt.Errorf("model: key %q declared by %s and %s", key, prev, owner)
	}
	keys[key] = owner
	return nil
}
