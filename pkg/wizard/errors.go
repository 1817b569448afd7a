package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrStepIncomplete matches every *IncompleteError via errors.Is.
	ErrStepIncomplete = errors.New("wizard: step incomplete")
	// ErrStepOutOfRange is returned when a jump targets a step that does not
	// exist.
	ErrStepOutOfRange = errors.New("wizard: step out of range")
	// ErrUnknownStep is returned when a selection names an undeclared step.
	ErrUnknownStep = errors.New("wizard: unknown step")
	// ErrUnknownOption is returned when a selection names an undeclared option.
	ErrUnknownOption = errors.New("wizard: unknown option")
	// ErrWrongStepKind is returned when a selection targets a step of another
	// kind, for example toggling a checkbox on a single-select step.
	ErrWrongStepKind = errors.New("wizard: wrong step kind")
	// ErrFieldNameRequired is returned by SetField for an empty name.
	ErrFieldNameRequired = errors.New("wizard: field name is required")
)

// IncompleteError reports the step whose validity rule failed and the
// message shown to the user.
type IncompleteError struct {
	Step    int
	StepID  string
	Message string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("wizard: step %d (%s) incomplete: %s", e.Step, e.StepID, e.Message)
}

// Is lets errors.Is(err, ErrStepIncomplete) match.
func (e *IncompleteError) Is(target error) bool {
	return target == ErrStepIncomplete
}
