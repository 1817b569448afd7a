package wizard

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/internal/signal"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/selection"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// Wizard is one in-memory wizard session.
//
// Handlers may run on scheduler goroutines, so every mutation happens under
// mu and events are published only after mu is released.
type Wizard struct {
	mu sync.Mutex

	def        model.Wizard
	state      State
	fields     map[string]string
	marks      map[string]validation.Outcome
	selections *selection.Tracker
	notices    map[int]*notice
	noticeSeq  int
	pending    Timer
	pendingSeq int
	completed  bool

	scheduler   Scheduler
	autoAdvance time.Duration
	noticeTTL   time.Duration
	logger      *zap.Logger

	events signal.Hub[Event]
}

type notice struct {
	Notification
	timer Timer
}

// Snapshot is a detached copy of the session data.
type Snapshot struct {
	State      State
	Completed  bool
	Fields     map[string]string
	Selections selection.Snapshot
}

// New validates def and returns a wizard positioned on step 1.
func New(def model.Wizard, options ...Option) (*Wizard, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("wizard: invalid definition: %w", err)
	}

	w := &Wizard{
		def:         def,
		state:       State{Current: 1, Total: def.TotalSteps()},
		fields:      make(map[string]string),
		marks:       make(map[string]validation.Outcome),
		notices:     make(map[int]*notice),
		scheduler:   RealScheduler(),
		autoAdvance: DefaultAutoAdvanceDelay,
		noticeTTL:   DefaultNotificationTTL,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	if w.selections == nil {
		w.selections = selection.New()
	}
	return w, nil
}

// Definition returns the wizard definition.
func (w *Wizard) Definition() model.Wizard {
	return w.def
}

// Selections exposes the selection tracker backing the wizard.
func (w *Wizard) Selections() *selection.Tracker {
	return w.selections
}

// Subscribe registers fn for wizard events.
func (w *Wizard) Subscribe(fn func(Event)) func() {
	return w.events.Subscribe(fn)
}

// State returns the current position.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Completed reports whether a submission finished the wizard.
func (w *Wizard) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed
}

// Snapshot copies the session data.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:      w.state,
		Completed:  w.completed,
		Fields:     copyFields(w.fields),
		Selections: w.selections.Snapshot(),
	}
}

// Fields returns a copy of the raw field values.
func (w *Wizard) Fields() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyFields(w.fields)
}

// Field returns the raw value of a field.
func (w *Wizard) Field(name string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	value, ok := w.fields[name]
	return value, ok
}

// Mark returns the last presentation outcome recorded for a field.
func (w *Wizard) Mark(name string) validation.Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.marks[name]
}

// SetField stores the raw value of an input. Values are kept verbatim;
// validation happens on Blur and on transition requests.
func (w *Wizard) SetField(name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrFieldNameRequired
	}
	w.mu.Lock()
	w.fields[name] = value
	w.mu.Unlock()
	return nil
}

// Blur validates a field after it loses focus and publishes its mark.
func (w *Wizard) Blur(name string) validation.Outcome {
	w.mu.Lock()
	outcome, ev := w.markLocked(name)
	w.mu.Unlock()
	w.publish(ev)
	return outcome
}

// Prefill stores and marks several fields at once, for returning users or
// demo data.
func (w *Wizard) Prefill(values map[string]string) {
	names := make([]string, 0, len(values))
	for name := range values {
		if strings.TrimSpace(name) != "" {
			names = append(names, strings.TrimSpace(name))
		}
	}
	sort.Strings(names)

	w.mu.Lock()
	var events []Event
	for name, value := range values {
		if key := strings.TrimSpace(name); key != "" {
			w.fields[key] = value
		}
	}
	for _, name := range names {
		_, ev := w.markLocked(name)
		events = append(events, ev...)
	}
	w.mu.Unlock()
	w.publish(events)
}

// SelectOption records the chosen option on a single-select step. When the
// step is current and not the last one, an automatic advance is scheduled.
func (w *Wizard) SelectOption(stepID, value string) error {
	n, step, err := w.lookupSelectionStep(stepID, value, model.StepKindSingle)
	if err != nil {
		return err
	}
	w.selections.SelectSingle(step.ID, value)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.completed || w.autoAdvance < 0 || n >= w.state.Total || n != w.state.Current {
		return nil
	}
	w.cancelPendingLocked()
	seq := w.pendingSeq
	w.pending = w.scheduler.AfterFunc(w.autoAdvance, func() {
		w.autoAdvanceFrom(n, seq)
	})
	return nil
}

// ToggleOption checks or unchecks an option on a multi-select step. Checking
// any option clears the step's pending notification.
func (w *Wizard) ToggleOption(stepID, value string, checked bool) error {
	n, step, err := w.lookupSelectionStep(stepID, value, model.StepKindMulti)
	if err != nil {
		return err
	}
	w.selections.ToggleMulti(step.ID, value, checked)

	if len(w.selections.Multi(step.ID)) == 0 {
		return nil
	}
	w.mu.Lock()
	events := w.clearNoticeLocked(n)
	w.mu.Unlock()
	w.publish(events)
	return nil
}

// StepValid reports whether step n satisfies its validity rule. It publishes
// nothing.
func (w *Wizard) StepValid(n int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.checkStepLocked(n, false)
	return err == nil
}

// Advance moves forward one step when the current step is valid. On the last
// step a valid advance is a no-op; submission is the controller's job. A
// rejected advance leaves the state untouched and publishes a notification.
func (w *Wizard) Advance() Transition {
	w.mu.Lock()
	w.cancelPendingLocked()
	t, events := w.advanceLocked()
	w.mu.Unlock()
	w.publish(events)
	return t
}

// Retreat moves back one step. It never validates and is a no-op on step 1.
func (w *Wizard) Retreat() Transition {
	w.mu.Lock()
	w.cancelPendingLocked()
	from := w.state.Current
	if w.completed || from <= 1 {
		w.mu.Unlock()
		return Transition{From: from, To: from}
	}
	w.state.Current--
	events := []Event{w.navigationLocked()}
	t := Transition{From: from, To: w.state.Current, Moved: true}
	w.mu.Unlock()
	w.publish(events)
	return t
}

// JumpTo moves directly to step n. Backward jumps always succeed; forward
// jumps require every step between the current one and n to be valid, so no
// step is reachable unless all prior steps satisfy their rule.
func (w *Wizard) JumpTo(n int) Transition {
	w.mu.Lock()
	w.cancelPendingLocked()
	from := w.state.Current
	if n < 1 || n > w.state.Total {
		w.mu.Unlock()
		return Transition{From: from, To: from, Err: fmt.Errorf("%w: %d", ErrStepOutOfRange, n)}
	}
	if w.completed || n == from {
		w.mu.Unlock()
		return Transition{From: from, To: from}
	}

	var events []Event
	if n > from {
		for s := from; s < n; s++ {
			marks, err := w.checkStepLocked(s, true)
			events = append(events, marks...)
			if err != nil {
				events = append(events, w.notifyLocked(from, err.Message)...)
				w.mu.Unlock()
				w.publish(events)
				return Transition{From: from, To: from, Err: err}
			}
		}
	}
	w.state.Current = n
	events = append(events, w.navigationLocked())
	w.mu.Unlock()
	w.publish(events)
	return Transition{From: from, To: n, Moved: true}
}

// RequireComplete checks the current step and every step before it, exactly
// as a forward move would. The first failure is reported through a
// notification on the current step and returned as an *IncompleteError.
func (w *Wizard) RequireComplete() error {
	w.mu.Lock()
	var events []Event
	current := w.state.Current
	// the current step first so its message wins when it is the culprit
	order := append([]int{current}, stepsBefore(current)...)
	for _, s := range order {
		marks, err := w.checkStepLocked(s, true)
		events = append(events, marks...)
		if err != nil {
			events = append(events, w.notifyLocked(current, err.Message)...)
			w.mu.Unlock()
			w.publish(events)
			return err
		}
	}
	w.mu.Unlock()
	w.publish(events)
	return nil
}

// Notification returns the live notification for step n.
func (w *Wizard) Notification(n int) (Notification, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if current, ok := w.notices[n]; ok {
		return current.Notification, true
	}
	return Notification{}, false
}

// DismissNotification removes the notification for step n, if any.
func (w *Wizard) DismissNotification(n int) {
	w.mu.Lock()
	events := w.clearNoticeLocked(n)
	w.mu.Unlock()
	w.publish(events)
}

// Complete marks the wizard finished. Navigation becomes a no-op until Reset.
func (w *Wizard) Complete() {
	w.mu.Lock()
	if w.completed {
		w.mu.Unlock()
		return
	}
	w.completed = true
	w.cancelPendingLocked()
	var events []Event
	for _, n := range w.noticeStepsLocked() {
		events = append(events, w.clearNoticeLocked(n)...)
	}
	events = append(events, Completed{})
	w.mu.Unlock()
	w.publish(events)
}

// Reset discards every value, selection and notification and returns to
// step 1.
func (w *Wizard) Reset() {
	w.mu.Lock()
	w.cancelPendingLocked()
	var events []Event
	for _, n := range w.noticeStepsLocked() {
		events = append(events, w.clearNoticeLocked(n)...)
	}
	w.state.Current = 1
	w.fields = make(map[string]string)
	w.marks = make(map[string]validation.Outcome)
	w.completed = false
	events = append(events, ResetDone{}, w.navigationLocked())
	w.mu.Unlock()

	w.selections.Reset()
	w.publish(events)
}

func (w *Wizard) advanceLocked() (Transition, []Event) {
	from := w.state.Current
	if w.completed {
		return Transition{From: from, To: from}, nil
	}

	events, err := w.checkStepLocked(from, true)
	if err != nil {
		w.logger.Debug("wizard: advance rejected",
			zap.Int("step", from),
			zap.String("step_id", err.StepID),
		)
		events = append(events, w.notifyLocked(from, err.Message)...)
		return Transition{From: from, To: from, Err: err}, events
	}
	if from >= w.state.Total {
		return Transition{From: from, To: from}, events
	}

	w.state.Current++
	w.logger.Debug("wizard: advanced", zap.Int("from", from), zap.Int("to", w.state.Current))
	events = append(events, w.navigationLocked())
	return Transition{From: from, To: w.state.Current, Moved: true}, events
}

func (w *Wizard) autoAdvanceFrom(step, seq int) {
	w.mu.Lock()
	if seq != w.pendingSeq {
		w.mu.Unlock()
		return
	}
	w.pending = nil
	if w.completed || w.state.Current != step {
		w.mu.Unlock()
		return
	}
	_, events := w.advanceLocked()
	w.mu.Unlock()
	w.publish(events)
}

// checkStepLocked evaluates the validity rule of step n. With mark set, the
// required fields of a fields step are marked the same way Blur marks them.
func (w *Wizard) checkStepLocked(n int, mark bool) ([]Event, *IncompleteError) {
	step, ok := w.def.Step(n)
	if !ok {
		return nil, &IncompleteError{Step: n, Message: model.DefaultIncompleteMessage}
	}
	incomplete := &IncompleteError{Step: n, StepID: step.ID, Message: step.Incomplete()}

	switch step.Kind {
	case model.StepKindSingle:
		if _, chosen := w.selections.Single(step.ID); !chosen {
			return nil, incomplete
		}
	case model.StepKindMulti:
		if len(w.selections.Multi(step.ID)) == 0 {
			return nil, incomplete
		}
	case model.StepKindFields:
		var events []Event
		valid := true
		for _, field := range step.Fields {
			if !field.Required {
				continue
			}
			value := w.fields[field.Name]
			outcome := validation.Validate(validation.KindFor(field.Name, field.InputType), value, true)
			if mark {
				_, ev := w.markLocked(field.Name)
				events = append(events, ev...)
			}
			if outcome != validation.OutcomeValid {
				valid = false
			}
		}
		if !valid {
			return events, incomplete
		}
		return events, nil
	}
	return nil, nil
}

func (w *Wizard) markLocked(name string) (validation.Outcome, []Event) {
	required := false
	inputType := ""
	if field, _, ok := w.def.Field(name); ok {
		required = field.Required
		inputType = field.InputType
	}
	outcome := validation.Validate(validation.KindFor(name, inputType), w.fields[name], required)
	w.marks[name] = outcome
	return outcome, []Event{FieldMarked{Name: name, Outcome: outcome}}
}

func (w *Wizard) notifyLocked(step int, message string) []Event {
	var events []Event
	if old, ok := w.notices[step]; ok && old.timer != nil {
		old.timer.Stop()
	}

	w.noticeSeq++
	id := w.noticeSeq
	n := &notice{Notification: Notification{
		ID:           id,
		Step:         step,
		Message:      message,
		ExpiresAfter: w.noticeTTL,
	}}
	if w.noticeTTL > 0 {
		n.timer = w.scheduler.AfterFunc(w.noticeTTL, func() {
			w.expireNotice(step, id)
		})
	}
	w.notices[step] = n
	events = append(events, NotificationShown{Notification: n.Notification})
	return events
}

func (w *Wizard) expireNotice(step, id int) {
	w.mu.Lock()
	current, ok := w.notices[step]
	if !ok || current.ID != id {
		w.mu.Unlock()
		return
	}
	delete(w.notices, step)
	w.mu.Unlock()
	w.publish([]Event{NotificationCleared{ID: id, Step: step}})
}

func (w *Wizard) clearNoticeLocked(step int) []Event {
	current, ok := w.notices[step]
	if !ok {
		return nil
	}
	if current.timer != nil {
		current.timer.Stop()
	}
	delete(w.notices, step)
	return []Event{NotificationCleared{ID: current.ID, Step: step}}
}

func (w *Wizard) noticeStepsLocked() []int {
	steps := make([]int, 0, len(w.notices))
	for n := range w.notices {
		steps = append(steps, n)
	}
	sort.Ints(steps)
	return steps
}

func (w *Wizard) cancelPendingLocked() {
	w.pendingSeq++
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}

func (w *Wizard) navigationLocked() NavigationUpdated {
	return NavigationUpdated{
		Step:     w.state.Current,
		Total:    w.state.Total,
		Percent:  w.state.Percent(),
		Controls: w.state.Controls(),
	}
}

func (w *Wizard) lookupSelectionStep(stepID, value string, kind model.StepKind) (int, model.Step, error) {
	n := w.def.StepNumber(stepID)
	if n == 0 {
		return 0, model.Step{}, fmt.Errorf("%w: %q", ErrUnknownStep, stepID)
	}
	step, _ := w.def.Step(n)
	if step.Kind != kind {
		return 0, model.Step{}, fmt.Errorf("%w: step %q is %s", ErrWrongStepKind, stepID, step.Kind)
	}
	if _, ok := step.Option(value); !ok {
		return 0, model.Step{}, fmt.Errorf("%w: %q on step %q", ErrUnknownOption, value, stepID)
	}
	return n, step, nil
}

func (w *Wizard) publish(events []Event) {
	for _, ev := range events {
		w.events.Emit(ev)
	}
}

func stepsBefore(n int) []int {
	if n <= 1 {
		return nil
	}
	out := make([]int, 0, n-1)
	for s := 1; s < n; s++ {
		out = append(out, s)
	}
	return out
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
