// Package html renders a wizard session as an HTML page. A Surface listens to
// wizard and submission events and renders the current view through embedded
// pongo2 templates; user-authored text goes through a bluemonday strict policy.
package html

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/render/template"
	"github.com/goliatone/go-formwizard/pkg/render/template/pongo"
	"github.com/goliatone/go-formwizard/pkg/submission"
	"github.com/goliatone/go-formwizard/pkg/validation"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

//go:embed templates/*.tmpl assets/*.css
var embedded embed.FS

// TemplatesFS exposes the embedded pongo2 templates so callers can copy or
// extend them and pass the result to WithTemplatesFS.
func TemplatesFS() fs.FS {
	return subFS("templates")
}

// AssetsFS exposes the stylesheet referenced through the theme AssetURL
// ("wizard.css").
func AssetsFS() fs.FS {
	return subFS("assets")
}

func subFS(dir string) fs.FS {
	sub, err := fs.Sub(embedded, dir)
	if err != nil {
		return embedded
	}
	return sub
}

const pageTemplate = "page"

var (
	// ErrNotAttached is returned by Render before Attach.
	ErrNotAttached = errors.New("html: surface is not attached to a wizard")

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Option configures a Surface.
type Option func(*Surface)

// WithTheme applies theme tokens and CSS variables to the page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Surface) {
		s.theme = cfg
	}
}

// WithTemplateRenderer swaps the template engine. The engine must provide
// page, step and success templates and a sanitize filter.
func WithTemplateRenderer(r template.TemplateRenderer) Option {
	return func(s *Surface) {
		if r != nil {
			s.engine = r
		}
	}
}

// WithTemplatesFS loads templates from files, typically to override the
// embedded markup.
func WithTemplatesFS(files fs.FS) Option {
	return func(s *Surface) {
		s.templates = files
	}
}

// WithHiddenFields adds hidden inputs to every form on the page. Names that
// collide with wizard inputs or the action button are dropped.
func WithHiddenFields(fields ...render.HiddenField) Option {
	return func(s *Surface) {
		s.hidden = append(s.hidden, fields...)
	}
}

// Surface is an HTML rendering surface for one session.
type Surface struct {
	mu sync.Mutex

	engine    template.TemplateRenderer
	templates fs.FS
	theme     *theme.RendererConfig
	optErr    error
	hidden    []render.HiddenField

	wiz     *wizard.Wizard
	ctrl    *submission.Controller
	notices map[int]wizard.Notification
	loading bool
	success string
	failure *submission.Failed
}

// New builds a surface over the embedded templates.
func New(options ...Option) (*Surface, error) {
	s := &Surface{notices: make(map[int]wizard.Notification)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.optErr != nil {
		return nil, s.optErr
	}
	if s.engine == nil {
		files := s.templates
		if files == nil {
			files = TemplatesFS()
		}
		engine, err := pongo.New(pongo.WithFS(files))
		if err != nil {
			return nil, fmt.Errorf("html: template engine: %w", err)
		}
		if err := engine.EnsureFilter("sanitize", sanitizeFilter); err != nil {
			return nil, fmt.Errorf("html: register sanitize filter: %w", err)
		}
		s.engine = engine
	}
	return s, nil
}

// Attach subscribes the surface to w and, when non-nil, c. The returned func
// detaches it.
func (s *Surface) Attach(w *wizard.Wizard, c *submission.Controller) func() {
	s.mu.Lock()
	s.wiz = w
	s.ctrl = c
	s.mu.Unlock()

	cancels := []func(){w.Subscribe(s.onWizardEvent)}
	if c != nil {
		cancels = append(cancels, c.Subscribe(s.onSubmissionEvent))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func (s *Surface) onWizardEvent(ev wizard.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch e := ev.(type) {
	case wizard.NotificationShown:
		s.notices[e.Step] = e.Notification
	case wizard.NotificationCleared:
		// a late expiry must not remove the notice that replaced it
		if n, ok := s.notices[e.Step]; ok && n.ID == e.ID {
			delete(s.notices, e.Step)
		}
	case wizard.ResetDone:
		s.notices = make(map[int]wizard.Notification)
		s.loading = false
		s.success = ""
		s.failure = nil
	}
}

func (s *Surface) onSubmissionEvent(ev submission.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch e := ev.(type) {
	case submission.LoadingChanged:
		s.loading = e.Loading
	case submission.Succeeded:
		s.success = e.Reference
		s.failure = nil
	case submission.Failed:
		s.failure = &e
	case submission.ErrorDismissed:
		s.failure = nil
	}
}

// Render writes the page for the current session state.
func (s *Surface) Render(out ...io.Writer) (string, error) {
	view, err := s.view()
	if err != nil {
		return "", err
	}
	return s.engine.RenderTemplate(pageTemplate, view, out...)
}

func (s *Surface) view() (pageView, error) {
	s.mu.Lock()
	w := s.wiz
	notices := make(map[int]string, len(s.notices))
	for k, n := range s.notices {
		notices[k] = n.Message
	}
	loading, success, failure := s.loading, s.success, s.failure
	hidden := s.hidden
	s.mu.Unlock()

	if w == nil {
		return pageView{}, ErrNotAttached
	}

	def := w.Definition()
	snap := w.Snapshot()
	view := pageView{
		ID:          def.ID,
		Title:       def.Title,
		Description: def.Description,
		Step:        snap.State.Current,
		Total:       snap.State.Total,
		Percent:     snap.State.Percent(),
		Controls:    controlsFrom(snap.State.Controls()),
		Loading:     loading,
		Theme:       buildThemeView(s.theme),
		Hidden:      render.HiddenFields(reservedName(def), hidden...),
	}
	if view.Title == "" {
		view.Title = def.ID
	}
	if success != "" {
		view.Success = &successView{Reference: success}
	}
	if failure != nil {
		view.Error = &errorView{Message: failure.Message, Reason: failure.Reason}
	}

	for i, step := range def.Steps {
		n := i + 1
		sv := stepView{
			Number:      n,
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			Kind:        string(step.Kind),
			PayloadKey:  step.PayloadKey,
			Active:      n == snap.State.Current,
			Notice:      notices[n],
		}
		switch step.Kind {
		case model.StepKindSingle:
			chosen, _ := snap.Selections.Single(step.ID)
			for _, opt := range step.Options {
				sv.Options = append(sv.Options, optionFrom(opt, opt.Value == chosen))
			}
		case model.StepKindMulti:
			checked := make(map[string]bool)
			for _, v := range snap.Selections.Multi(step.ID) {
				checked[v] = true
			}
			for _, opt := range step.Options {
				sv.Options = append(sv.Options, optionFrom(opt, checked[opt.Value]))
			}
		case model.StepKindFields:
			for _, field := range step.Fields {
				sv.Fields = append(sv.Fields, fieldView{
					Name:        field.Name,
					Label:       field.DisplayLabel(),
					InputType:   field.InputType,
					HTMLType:    htmlInputType(field.InputType),
					Placeholder: field.Placeholder,
					Value:       snap.Fields[field.Name],
					Required:    field.Required,
					State:       stateClass(w.Mark(field.Name)),
				})
			}
		}
		view.Steps = append(view.Steps, sv)
	}
	return view, nil
}

// reservedName reports names the form already posts.
func reservedName(def model.Wizard) func(string) bool {
	taken := map[string]bool{FormActionField: true}
	for _, step := range def.Steps {
		if step.PayloadKey != "" {
			taken[step.PayloadKey] = true
		}
		for _, field := range step.Fields {
			taken[field.Name] = true
		}
	}
	return func(name string) bool { return taken[name] }
}

func sanitizeFilter(input any, _ any) (any, error) {
	if input == nil {
		return "", nil
	}
	return Sanitize(fmt.Sprint(input)), nil
}

// Sanitize strips every tag from raw and escapes what remains.
func Sanitize(raw string) string {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(policy.Sanitize(raw))
}

func stateClass(outcome validation.Outcome) string {
	switch outcome {
	case validation.OutcomeValid:
		return "valid"
	case validation.OutcomeInvalid:
		return "invalid"
	default:
		return ""
	}
}

func htmlInputType(inputType string) string {
	switch inputType {
	case "email", "tel", "number", "date":
		return inputType
	default:
		return "text"
	}
}

func optionFrom(opt model.Option, selected bool) optionView {
	return optionView{
		Value:       opt.Value,
		Label:       opt.DisplayLabel(),
		Description: opt.Description,
		Selected:    selected,
	}
}

func controlsFrom(c wizard.Controls) controlsView {
	return controlsView{
		PrevEnabled:   c.PrevEnabled,
		NextVisible:   c.NextVisible,
		SubmitVisible: c.SubmitVisible,
	}
}

func buildThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	view := themeView{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		view.Stylesheet = cfg.AssetURL(StylesheetAsset)
	}
	return view
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(cssValue(vars[key]))
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// cssValue drops characters that could close the declaration or the style
// element.
func cssValue(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '{', '}', ';':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}
