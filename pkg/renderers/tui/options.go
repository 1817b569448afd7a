package tui

import (
	"io"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/payload"
)

// Theme captures optional formatting hints applied when printing messages.
// Keep minimal to avoid coupling runner logic to ANSI specifics.
type Theme struct {
	InfoPrefix    string
	ErrorPrefix   string
	SuccessPrefix string
}

// DefaultTheme is used when WithTheme is not supplied.
var DefaultTheme = Theme{
	InfoPrefix:    "",
	ErrorPrefix:   "! ",
	SuccessPrefix: "✔ ",
}

// Option configures the terminal runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects how the submitted payload is written to the
// output writer after a successful submission.
func WithOutputFormat(format payload.Format) Option {
	return func(r *Runner) {
		if format != "" {
			r.format = format
		}
	}
}

// WithOutput sets the writer receiving the encoded payload. Nil disables
// payload output.
func WithOutput(out io.Writer) Option {
	return func(r *Runner) {
		r.out = out
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}
