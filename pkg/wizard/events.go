package wizard

import (
	"time"

	"github.com/goliatone/go-formwizard/pkg/validation"
)

// Event is implemented by every signal the wizard publishes.
type Event interface {
	EventName() string
}

// Controls describes which navigation affordances a surface should expose.
type Controls struct {
	PrevEnabled   bool
	NextVisible   bool
	SubmitVisible bool
}

// NavigationUpdated is published after the current step changes or the
// wizard is reset.
type NavigationUpdated struct {
	Step     int
	Total    int
	Percent  float64
	Controls Controls
}

// Notification is a display-once message scoped to a step's content region.
type Notification struct {
	ID           int
	Step         int
	Message      string
	ExpiresAfter time.Duration
}

// NotificationShown replaces any notification already shown for Step.
type NotificationShown struct {
	Notification
}

// NotificationCleared is published when a notification expires or is
// dismissed.
type NotificationCleared struct {
	ID   int
	Step int
}

// FieldMarked carries the presentation outcome of a field check.
type FieldMarked struct {
	Name    string
	Outcome validation.Outcome
}

// Completed is published when the wizard is finished by a successful
// submission.
type Completed struct{}

// ResetDone is published after Reset returns the wizard to step 1.
type ResetDone struct{}

func (NavigationUpdated) EventName() string   { return "navigation.updated" }
func (NotificationShown) EventName() string   { return "notification.shown" }
func (NotificationCleared) EventName() string { return "notification.cleared" }
func (FieldMarked) EventName() string         { return "field.marked" }
func (Completed) EventName() string           { return "wizard.completed" }
func (ResetDone) EventName() string           { return "wizard.reset" }
