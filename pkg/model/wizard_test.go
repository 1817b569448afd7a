package model_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/model"
)

func sampleWizard() model.Wizard {
	return model.Wizard{
		ID: "intake",
		Steps: []model.Step{
			{
				ID:         "care-type",
				Kind:       model.StepKindSingle,
				PayloadKey: "Care-Type",
				Options:    []model.Option{{Value: "visiting", Label: "Visiting care"}, {Value: "live-in"}},
			},
			{
				ID:   "contact",
				Kind: model.StepKindFields,
				Fields: []model.Field{
					{Name: "full_name", Required: true},
					{Name: "email", InputType: "email", Required: true},
				},
				IncompleteMessage: "  ",
			},
		},
	}
}

func TestWizard_Lookups(t *testing.T) {
	w := sampleWizard()

	if w.TotalSteps() != 2 {
		t.Fatalf("expected 2 steps, got %d", w.TotalSteps())
	}
	if _, ok := w.Step(0); ok {
		t.Fatalf("step 0 should not exist")
	}
	if step, ok := w.Step(2); !ok || step.ID != "contact" {
		t.Fatalf("unexpected step 2: %+v", step)
	}
	if n := w.StepNumber("contact"); n != 2 {
		t.Fatalf("expected contact at 2, got %d", n)
	}
	if n := w.StepNumber("missing"); n != 0 {
		t.Fatalf("expected 0 for unknown step, got %d", n)
	}

	field, n, ok := w.Field("email")
	if !ok || n != 2 || field.InputType != "email" {
		t.Fatalf("unexpected field lookup: %+v step=%d ok=%v", field, n, ok)
	}
	if diff := cmp.Diff([]string{"full_name", "email"}, w.FieldNames()); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}

	step, _ := w.Step(1)
	if opt, ok := step.Option("live-in"); !ok || opt.DisplayLabel() != "live-in" {
		t.Fatalf("unexpected option: %+v", opt)
	}
	if opt, _ := step.Option("visiting"); opt.DisplayLabel() != "Visiting care" {
		t.Fatalf("label not used: %+v", opt)
	}
}

func TestStep_IncompleteFallsBackToDefault(t *testing.T) {
	w := sampleWizard()
	step, _ := w.Step(2)
	if got := step.Incomplete(); got != model.DefaultIncompleteMessage {
		t.Fatalf("expected default message, got %q", got)
	}
	step.IncompleteMessage = "Fill in your details."
	if got := step.Incomplete(); got != "Fill in your details." {
		t.Fatalf("expected custom message, got %q", got)
	}
}

func TestWizard_Validate(t *testing.T) {
	if err := sampleWizard().Validate(); err != nil {
		t.Fatalf("valid wizard rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*model.Wizard)
		want   string
	}{
		{"missing id", func(w *model.Wizard) { w.ID = "" }, "wizard id is required"},
		{"no steps", func(w *model.Wizard) { w.Steps = nil }, "at least one step"},
		{"duplicate step", func(w *model.Wizard) { w.Steps[1].ID = "care-type" }, "duplicate id"},
		{"unknown kind", func(w *model.Wizard) { w.Steps[0].Kind = "radio" }, "unknown kind"},
		{"no options", func(w *model.Wizard) { w.Steps[0].Options = nil }, "requires options"},
		{"no payload key", func(w *model.Wizard) { w.Steps[0].PayloadKey = "" }, "payload key is required"},
		{"duplicate option", func(w *model.Wizard) {
			w.Steps[0].Options = append(w.Steps[0].Options, model.Option{Value: "visiting"})
		}, "duplicate option"},
		{"field name missing", func(w *model.Wizard) { w.Steps[1].Fields[0].Name = "" }, "field name is required"},
		{"key collision", func(w *model.Wizard) { w.Steps[1].Fields[0].Name = "Care-Type" }, "declared by"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := sampleWizard()
			tc.mutate(&w)
			err := w.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
