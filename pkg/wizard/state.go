package wizard

// State is the position of the wizard. Current always lies in [1, Total].
type State struct {
	Current int
	Total   int
}

// Progress returns Current/Total in [0, 1].
func (s State) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Current) / float64(s.Total)
}

// Percent returns Progress scaled to 0..100.
func (s State) Percent() float64 {
	return s.Progress() * 100
}

// First reports whether the wizard is on step 1.
func (s State) First() bool {
	return s.Current <= 1
}

// Last reports whether the wizard is on the final step.
func (s State) Last() bool {
	return s.Current >= s.Total
}

// Controls derives the navigation affordances for the state.
func (s State) Controls() Controls {
	return Controls{
		PrevEnabled:   !s.First(),
		NextVisible:   !s.Last(),
		SubmitVisible: s.Last(),
	}
}

// Transition is the result of a navigation request.
type Transition struct {
	From  int
	To    int
	Moved bool
	Err   error
}

// OK reports whether the request was not rejected. A no-op is OK.
func (t Transition) OK() bool {
	return t.Err == nil
}
