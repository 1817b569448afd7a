package submission

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a transport call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout bounds each transport call. Zero or negative disables the
// bound, leaving only the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithTokens overrides the reference generator.
func WithTokens(tokens TokenGenerator) Option {
	return func(c *Controller) {
		if tokens != nil {
			c.tokens = tokens
		}
	}
}

// WithLogger sets the logger used for submission diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder reports submission outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTracerProvider traces transport calls with tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Controller) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}
