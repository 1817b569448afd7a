package html_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/definition"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/submission"
)

func TestActionsFromForm(t *testing.T) {
	def := definition.MustCareIntake()

	tests := []struct {
		name    string
		current int
		form    url.Values
		want    []html.Action
	}{
		{
			name:    "single step selection then next",
			current: 1,
			form:    url.Values{"Care-Type": {"overnight"}, "action": {"next"}},
			want: []html.Action{
				{Kind: html.ActionSelect, Step: "care-type", Value: "overnight"},
				{Kind: html.ActionNext},
			},
		},
		{
			name:    "multi step posts the full checkbox set",
			current: 2,
			form:    url.Values{"Care-Needs": {"meals"}, "action": {"next"}},
			want: []html.Action{
				{Kind: html.ActionToggle, Step: "care-needs", Value: "personal-care"},
				{Kind: html.ActionToggle, Step: "care-needs", Value: "companionship"},
				{Kind: html.ActionToggle, Step: "care-needs", Value: "medication"},
				{Kind: html.ActionToggle, Step: "care-needs", Value: "meals", Checked: true},
				{Kind: html.ActionToggle, Step: "care-needs", Value: "mobility"},
				{Kind: html.ActionToggle, Step: "care-needs", Value: "dementia"},
				{Kind: html.ActionToggle, Step: "care-needs", Value: "household"},
				{Kind: html.ActionNext},
			},
		},
		{
			name:    "fields are set and blurred, other steps ignored",
			current: 3,
			form:    url.Values{"postcode": {"SW1A 1AA"}, "Care-Type": {"respite"}, "action": {"prev"}},
			want: []html.Action{
				{Kind: html.ActionInput, Name: "postcode", Value: "SW1A 1AA"},
				{Kind: html.ActionBlur, Name: "postcode"},
				{Kind: html.ActionPrev},
			},
		},
		{
			name:    "no button keeps inputs only",
			current: 1,
			form:    url.Values{},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := html.ActionsFromForm(def, tt.current, tt.form)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("actions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleFormWalksToSuccess(t *testing.T) {
	s := newSession(t, definition.MustCareIntake())
	ctx := context.Background()
	posts := []url.Values{
		{"Care-Type": {"live-in"}, "action": {"next"}},
		{"Care-Needs": {"companionship", "meals"}, "action": {"next"}},
		{"postcode": {"SW1A 1AA"}, "city": {"London"}, "action": {"next"}},
		{"Start-Time": {"asap"}, "action": {"next"}},
		{"full_name": {"John Doe"}, "email": {"john.doe@example.com"}, "phone": {"07123456789"}, "additional_info": {""}, "action": {"submit"}},
	}
	for i, form := range posts {
		if err := s.surface.HandleForm(ctx, form); err != nil {
			t.Fatalf("post %d: %v", i+1, err)
		}
	}
	if s.ctrl.Phase() != submission.PhaseSucceeded {
		t.Fatalf("expected success, got %s", s.ctrl.Phase())
	}
	got, _ := s.transport.Sent()[0].Get("Care-Needs")
	if got != "companionship, meals" {
		t.Fatalf("unexpected care needs %q", got)
	}
	assertContains(t, s.render(t), "Reference ID: #REF000042")

	if err := s.surface.HandleForm(ctx, url.Values{"action": {"reset"}}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := s.wiz.State().Current; got != 1 {
		t.Fatalf("expected step 1 after reset, got %d", got)
	}
}

func TestHandleFormReportsUnknownAction(t *testing.T) {
	s := newSession(t, definition.MustCareIntake())
	if err := s.surface.HandleForm(context.Background(), url.Values{"action": {"explode"}}); err == nil {
		t.Fatalf("expected an error for an unknown action")
	}
	detached, err := html.New()
	if err != nil {
		t.Fatalf("html.New: %v", err)
	}
	if err := detached.HandleForm(context.Background(), url.Values{}); !errors.Is(err, html.ErrNotAttached) {
		t.Fatalf("expected ErrNotAttached, got %v", err)
	}
}
