package submission

import "github.com/goliatone/go-formwizard/pkg/payload"

// Event is implemented by every signal the controller publishes.
type Event interface {
	EventName() string
}

// PhaseChanged is published on every phase transition.
type PhaseChanged struct {
	From Phase
	To   Phase
}

// LoadingChanged toggles the loading indicator around a transport call.
type LoadingChanged struct {
	Loading bool
}

// Succeeded carries the reference shown on the success screen.
type Succeeded struct {
	Reference string
	Payload   payload.Payload
	Receipt   Receipt
}

// Failed is a dismissible submission error scoped to a step.
type Failed struct {
	Step    int
	Reason  string
	Message string
	Err     error
}

// ErrorDismissed is published when a Failed error is dismissed or superseded.
type ErrorDismissed struct {
	Step int
}

func (PhaseChanged) EventName() string   { return "submission.phase" }
func (LoadingChanged) EventName() string { return "submission.loading" }
func (Succeeded) EventName() string      { return "submission.succeeded" }
func (Failed) EventName() string         { return "submission.failed" }
func (ErrorDismissed) EventName() string { return "submission.error_dismissed" }
