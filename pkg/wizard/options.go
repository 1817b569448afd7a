package wizard

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/selection"
)

const (
	// DefaultAutoAdvanceDelay is the pause between choosing an option card and
	// moving to the next step.
	DefaultAutoAdvanceDelay = 500 * time.Millisecond
	// DefaultNotificationTTL is how long a step notification stays visible.
	DefaultNotificationTTL = 5 * time.Second
)

// Option configures a Wizard.
type Option func(*Wizard)

// WithScheduler replaces the wall-clock scheduler, typically with a manual
// one in tests.
func WithScheduler(s Scheduler) Option {
	return func(w *Wizard) {
		if s != nil {
			w.scheduler = s
		}
	}
}

// WithAutoAdvanceDelay sets the delay between choosing an option and the
// automatic advance.
func WithAutoAdvanceDelay(d time.Duration) Option {
	return func(w *Wizard) {
		if d >= 0 {
			w.autoAdvance = d
		}
	}
}

// WithoutAutoAdvance disables the automatic advance after choosing an option.
func WithoutAutoAdvance() Option {
	return func(w *Wizard) {
		w.autoAdvance = -1
	}
}

// WithNotificationTTL sets how long notifications live. Zero keeps them until
// replaced or dismissed.
func WithNotificationTTL(d time.Duration) Option {
	return func(w *Wizard) {
		if d >= 0 {
			w.noticeTTL = d
		}
	}
}

// WithTracker shares an existing selection tracker.
func WithTracker(t *selection.Tracker) Option {
	return func(w *Wizard) {
		if t != nil {
			w.selections = t
		}
	}
}

// WithLogger attaches a zap logger; the default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}
