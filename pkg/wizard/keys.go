package wizard

// Key names a keyboard key relevant to navigation.
type Key string

const (
	KeyArrowRight Key = "ArrowRight"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyEnter      Key = "Enter"
	KeySpace      Key = " "
)

// HandleKey maps arrow keys and Enter to navigation. ArrowRight and Enter
// advance unless the wizard is on the last step, where submission takes over;
// ArrowLeft retreats. Other keys are no-ops.
func (w *Wizard) HandleKey(key Key) Transition {
	state := w.State()
	switch key {
	case KeyArrowRight, KeyEnter:
		if !state.Last() {
			return w.Advance()
		}
	case KeyArrowLeft:
		if !state.First() {
			return w.Retreat()
		}
	}
	return Transition{From: state.Current, To: state.Current}
}
