package html

import (
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// StylesheetAsset is the asset key the page links as its stylesheet.
const StylesheetAsset = "wizard.css"

// ErrUnknownTheme is returned by a ThemeSet for a name it does not hold.
var ErrUnknownTheme = errors.New("html: unknown theme")

// CareTheme is the built-in manifest for the care intake pages.
func CareTheme() *theme.Manifest {
	return &theme.Manifest{
		Name:    "care",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":           "#0b6e4f",
			"wizard-track":    "#e5e7eb",
			"wizard-valid":    "#15803d",
			"wizard-invalid":  "#b91c1c",
			"wizard-surface":  "#ffffff",
			"wizard-on-brand": "#ffffff",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				StylesheetAsset: StylesheetAsset,
			},
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"brand":          "#34d399",
					"wizard-track":   "#374151",
					"wizard-surface": "#111827",
				},
			},
		},
	}
}

// ThemeSet is a theme.ThemeSelector over a fixed list of manifests. An empty
// name picks the first manifest; an unknown variant keeps the base tokens.
type ThemeSet struct {
	manifests []*theme.Manifest
}

var _ theme.ThemeSelector = (*ThemeSet)(nil)

// NewThemeSet builds a selector. Nil manifests are skipped.
func NewThemeSet(manifests ...*theme.Manifest) *ThemeSet {
	set := &ThemeSet{}
	for _, m := range manifests {
		if m != nil {
			set.manifests = append(set.manifests, m)
		}
	}
	return set
}

// Select resolves name and variant to a selection.
func (s *ThemeSet) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	for _, m := range s.manifests {
		if name == "" || m.Name == name {
			return &theme.Selection{Theme: m.Name, Variant: variant, Manifest: m}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// ThemeFromSelection derives the renderer configuration: variant tokens
// override base tokens, every token becomes a --name CSS variable and assets
// resolve against the manifest prefix.
func ThemeFromSelection(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	tokens := make(map[string]string, len(m.Tokens))
	partials := make(map[string]string, len(m.Templates))
	files := make(map[string]string, len(m.Assets.Files))
	prefix := m.Assets.Prefix
	for k, v := range m.Tokens {
		tokens[k] = v
	}
	for k, v := range m.Templates {
		partials[k] = v
	}
	for k, v := range m.Assets.Files {
		files[k] = v
	}
	if variant, ok := m.Variants[sel.Variant]; ok {
		for k, v := range variant.Tokens {
			tokens[k] = v
		}
		for k, v := range variant.Templates {
			partials[k] = v
		}
		for k, v := range variant.Assets.Files {
			files[k] = v
		}
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for k, v := range tokens {
		cssVars["--"+strings.TrimPrefix(k, "--")] = v
	}
	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Tokens:   tokens,
		CSSVars:  cssVars,
		Partials: partials,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				file = key
			}
			if prefix == "" {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
		},
	}
}

// WithThemeSelection selects name and variant from selector and applies the
// result like WithTheme. A failed selection is reported by New.
func WithThemeSelection(selector theme.ThemeSelector, name, variant string) Option {
	return func(s *Surface) {
		if selector == nil {
			return
		}
		sel, err := selector.Select(name, variant)
		if err != nil {
			s.optErr = fmt.Errorf("html: select theme: %w", err)
			return
		}
		s.theme = ThemeFromSelection(sel)
	}
}
