package submission

import "errors"

// FailureMessage is the user-facing text attached to every Failed event.
const FailureMessage = "There was an error submitting your request. Please try again."

var (
	// ErrInProgress is returned when Submit or Reset races a submission.
	ErrInProgress = errors.New("submission: already in progress")
	// ErrAlreadySubmitted is returned by Submit after a success.
	ErrAlreadySubmitted = errors.New("submission: already submitted")
	// ErrNotFinalStep is returned when Submit is called before the last step.
	ErrNotFinalStep = errors.New("submission: wizard is not on the final step")
	// ErrTimeout is returned when the transport does not answer in time.
	ErrTimeout = errors.New("submission: timed out")
	// ErrCancelled is returned when the caller's context ends the send.
	ErrCancelled = errors.New("submission: cancelled")
	// ErrNilWizard and ErrNilTransport guard the constructor.
	ErrNilWizard    = errors.New("submission: wizard is nil")
	ErrNilTransport = errors.New("submission: transport is nil")
)

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "submission timed out"
	case errors.Is(err, ErrCancelled):
		return "submission cancelled"
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}
