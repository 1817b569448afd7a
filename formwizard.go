// Package formwizard assembles a wizard session: the step state machine, its
// selection tracker, the submission controller and a transport. Surfaces
// (terminal, HTML) attach to a Session through its accessors.
package formwizard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/definition"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/selection"
	"github.com/goliatone/go-formwizard/pkg/submission"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Transport aliases submission.Transport so callers configuring a session
// need a single import.
type Transport = submission.Transport

// Result aliases submission.Result.
type Result = submission.Result

// ErrNilTransport is returned when NewSession is called without a transport.
var ErrNilTransport = errors.New("formwizard: transport is required")

// Option configures NewSession.
type Option func(*sessionConfig)

type sessionConfig struct {
	wizard     []wizard.Option
	submission []submission.Option
	logger     *zap.Logger
	prefill    map[string]string
}

// WithWizardOptions forwards options to wizard.New.
func WithWizardOptions(options ...wizard.Option) Option {
	return func(cfg *sessionConfig) {
		cfg.wizard = append(cfg.wizard, options...)
	}
}

// WithSubmissionOptions forwards options to submission.New.
func WithSubmissionOptions(options ...submission.Option) Option {
	return func(cfg *sessionConfig) {
		cfg.submission = append(cfg.submission, options...)
	}
}

// WithLogger sets the logger of both the wizard and the controller.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *sessionConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithPrefill seeds field values when the session starts.
func WithPrefill(values map[string]string) Option {
	return func(cfg *sessionConfig) {
		cfg.prefill = values
	}
}

// WithDemoPrefill seeds the demo contact and location values.
func WithDemoPrefill() Option {
	return WithPrefill(definition.DemoValues)
}

// Session is one in-memory wizard run. Sessions are independent; any number
// can coexist.
type Session struct {
	def  model.Wizard
	wiz  *wizard.Wizard
	ctrl *submission.Controller
}

// NewSession builds a session for def that submits through t.
func NewSession(def model.Wizard, t Transport, options ...Option) (*Session, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	cfg := sessionConfig{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	wizOpts := append([]wizard.Option{wizard.WithLogger(cfg.logger)}, cfg.wizard...)
	wiz, err := wizard.New(def, wizOpts...)
	if err != nil {
		return nil, fmt.Errorf("formwizard: %w", err)
	}
	subOpts := append([]submission.Option{submission.WithLogger(cfg.logger)}, cfg.submission...)
	ctrl, err := submission.New(wiz, t, subOpts...)
	if err != nil {
		return nil, fmt.Errorf("formwizard: %w", err)
	}
	if len(cfg.prefill) > 0 {
		wiz.Prefill(cfg.prefill)
	}
	return &Session{def: def, wiz: wiz, ctrl: ctrl}, nil
}

// NewCareIntakeSession builds a session for the embedded care-intake flow.
func NewCareIntakeSession(t Transport, options ...Option) (*Session, error) {
	def, err := definition.CareIntake()
	if err != nil {
		return nil, fmt.Errorf("formwizard: %w", err)
	}
	return NewSession(def, t, options...)
}

// Definition returns the wizard definition.
func (s *Session) Definition() model.Wizard { return s.def }

// Wizard returns the step state machine.
func (s *Session) Wizard() *wizard.Wizard { return s.wiz }

// Selections returns the selection tracker backing the wizard.
func (s *Session) Selections() *selection.Tracker { return s.wiz.Selections() }

// Controller returns the submission controller.
func (s *Session) Controller() *submission.Controller { return s.ctrl }

// Submit forwards to the controller.
func (s *Session) Submit(ctx context.Context) Result {
	return s.ctrl.Submit(ctx)
}

// Reset starts a fresh request on the same session.
func (s *Session) Reset() error {
	return s.ctrl.Reset()
}

// HTML builds an HTML surface attached to the session. The returned func
// detaches it.
func (s *Session) HTML(options ...html.Option) (*html.Surface, func(), error) {
	surface, err := html.New(options...)
	if err != nil {
		return nil, nil, err
	}
	detach := surface.Attach(s.wiz, s.ctrl)
	return surface, detach, nil
}

// RunTerminal walks the session through terminal prompts.
func (s *Session) RunTerminal(ctx context.Context, options ...tui.Option) (Result, error) {
	return tui.New(options...).Run(ctx, s.wiz, s.ctrl)
}
