// Package selection tracks the choices a user made on option (single-select)
// and checkbox-group (multi-select) steps. The tracker is the single source of
// truth for selections; rendering surfaces feed it events and subscribe to its
// changes instead of reading state back from their own widgets.
package selection

import (
	"sync"

	"github.com/goliatone/go-formwizard/internal/signal"
)

// Change describes the selection of a step after a mutation.
type Change struct {
	Step   string
	Multi  bool
	Values []string
}

// Tracker stores single and multi selections keyed by step identifier.
type Tracker struct {
	mu     sync.RWMutex
	single map[string]string
	multi  map[string][]string
	events signal.Hub[Change]
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		single: make(map[string]string),
		multi:  make(map[string][]string),
	}
}

// SelectSingle makes value the only selection for step. Empty values are
// ignored.
func (t *Tracker) SelectSingle(step, value string) {
	if value == "" {
		return
	}
	t.mu.Lock()
	if t.single == nil {
		t.single = make(map[string]string)
	}
	previous, had := t.single[step]
	t.single[step] = value
	t.mu.Unlock()

	if had && previous == value {
		return
	}
	t.events.Emit(Change{Step: step, Values: []string{value}})
}

// ToggleMulti adds value to the step's set when present is true and removes it
// otherwise. It reports whether membership changed; adding a member twice is a
// no-op.
func (t *Tracker) ToggleMulti(step, value string, present bool) bool {
	if value == "" {
		return false
	}

	t.mu.Lock()
	if t.multi == nil {
		t.multi = make(map[string][]string)
	}
	current := t.multi[step]
	idx := indexOf(current, value)
	changed := false
	switch {
	case present && idx < 0:
		t.multi[step] = append(append([]string(nil), current...), value)
		changed = true
	case !present && idx >= 0:
		next := make([]string, 0, len(current)-1)
		next = append(next, current[:idx]...)
		next = append(next, current[idx+1:]...)
		if len(next) == 0 {
			delete(t.multi, step)
		} else {
			t.multi[step] = next
		}
		changed = true
	}
	values := copyValues(t.multi[step])
	t.mu.Unlock()

	if changed {
		t.events.Emit(Change{Step: step, Multi: true, Values: values})
	}
	return changed
}

// Single returns the chosen value for a single-select step. The boolean is
// false when nothing has been chosen.
func (t *Tracker) Single(step string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value, ok := t.single[step]
	return value, ok
}

// Multi returns the members of a multi-select step in the order they were
// added. It never returns nil.
func (t *Tracker) Multi(step string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return copyValues(t.multi[step])
}

// Has reports whether value is selected on step, single or multi.
func (t *Tracker) Has(step, value string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.single[step]; ok && v == value {
		return true
	}
	return indexOf(t.multi[step], value) >= 0
}

// Snapshot returns a detached copy of every selection.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := Snapshot{
		single: make(map[string]string, len(t.single)),
		multi:  make(map[string][]string, len(t.multi)),
	}
	for step, value := range t.single {
		snap.single[step] = value
	}
	for step, values := range t.multi {
		snap.multi[step] = copyValues(values)
	}
	return snap
}

// Reset clears every selection and notifies subscribers once per cleared step.
func (t *Tracker) Reset() {
	t.mu.Lock()
	var cleared []Change
	for step := range t.single {
		cleared = append(cleared, Change{Step: step, Values: []string{}})
	}
	for step := range t.multi {
		cleared = append(cleared, Change{Step: step, Multi: true, Values: []string{}})
	}
	t.single = make(map[string]string)
	t.multi = make(map[string][]string)
	t.mu.Unlock()

	for _, change := range cleared {
		t.events.Emit(change)
	}
}

// Subscribe registers fn for selection changes and returns its cancel func.
func (t *Tracker) Subscribe(fn func(Change)) func() {
	return t.events.Subscribe(fn)
}

// Snapshot is an immutable copy of a tracker's selections.
type Snapshot struct {
	single map[string]string
	multi  map[string][]string
}

// Single mirrors Tracker.Single.
func (s Snapshot) Single(step string) (string, bool) {
	value, ok := s.single[step]
	return value, ok
}

// Multi mirrors Tracker.Multi.
func (s Snapshot) Multi(step string) []string {
	return copyValues(s.multi[step])
}

// Map flattens the snapshot into step -> values, single steps holding one
// element.
func (s Snapshot) Map() map[string][]string {
	out := make(map[string][]string, len(s.single)+len(s.multi))
	for step, value := range s.single {
		out[step] = []string{value}
	}
	for step, values := range s.multi {
		out[step] = copyValues(values)
	}
	return out
}

func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}

func copyValues(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
