// Package render holds helpers shared by the rendering surfaces. The template
// engine seam lives in the template subpackage.
package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted inside a wizard form, typically a
// token the host server checks on every post.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken carries a CSRF token under the name the backend expects, for
// example "_csrf" or "csrf_token".
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// SessionField carries a session id for servers hosting several sessions.
func SessionField(name, id string) HiddenField {
	return Hidden(name, id)
}

// HiddenFields normalises fields for rendering: names are trimmed, empty and
// reserved names dropped, later fields win on collisions and the result is
// sorted by name.
func HiddenFields(reserved func(string) bool, fields ...HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" || (reserved != nil && reserved(name)) {
			continue
		}
		values[name] = field.Value
	}
	if len(values) == 0 {
		return nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: values[name]})
	}
	return out
}
