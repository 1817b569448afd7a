package submission

// Phase is the controller lifecycle position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseRejected
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseRejected:
		return "rejected"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status summarises a Submit call.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
	StatusIgnored   Status = "ignored"
)
