// Package payload aggregates wizard field values and selections into the
// ordered name/value list sent by the submission controller.
package payload

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// MultiSeparator joins the values of a multi-select step.
const MultiSeparator = ", "

// Entry is one logical field of the payload.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Payload is an immutable ordered list of entries with unique names.
type Payload struct {
	entries []Entry
}

// Selections is the read side of a selection tracker or snapshot.
type Selections interface {
	Single(step string) (string, bool)
	Multi(step string) []string
}

// Build aggregates a submission payload. Non-empty field values (after
// trimming) are appended verbatim, declared fields first in definition order
// and any remaining names sorted. Single-select steps contribute their value
// under the step payload key; multi-select steps contribute one entry whose
// value joins the checked options in declaration order.
//
// Build never mutates its inputs.
func Build(def model.Wizard, fields map[string]string, selections Selections) Payload {
	var out []Entry
	seen := make(map[string]struct{})
	add := func(name, value string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, Entry{Name: name, Value: value})
	}

	declared := make(map[string]struct{})
	for _, name := range def.FieldNames() {
		declared[name] = struct{}{}
		if value, ok := fields[name]; ok && !validation.Blank(value) {
			add(name, value)
		}
	}

	keys := make(map[string]struct{})
	for _, step := range def.Steps {
		if step.PayloadKey != "" {
			keys[step.PayloadKey] = struct{}{}
		}
	}
	extra := make([]string, 0, len(fields))
	for name, value := range fields {
		if _, ok := declared[name]; ok {
			continue
		}
		if _, ok := keys[name]; ok {
			continue
		}
		if strings.TrimSpace(name) == "" || validation.Blank(value) {
			continue
		}
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		add(name, fields[name])
	}

	if selections == nil {
		return Payload{entries: out}
	}
	for _, step := range def.Steps {
		switch step.Kind {
		case model.StepKindSingle:
			if value, ok := selections.Single(step.ID); ok && value != "" {
				add(step.PayloadKey, value)
			}
		case model.StepKindMulti:
			if values := orderedValues(step, selections.Multi(step.ID)); len(values) > 0 {
				add(step.PayloadKey, strings.Join(values, MultiSeparator))
			}
		}
	}
	return Payload{entries: out}
}

// orderedValues sorts checked values by option declaration order; values the
// step does not declare keep their selection order at the end.
func orderedValues(step model.Step, checked []string) []string {
	if len(checked) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(checked))
	for _, v := range checked {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(checked))
	for _, opt := range step.Options {
		if _, ok := set[opt.Value]; ok {
			out = append(out, opt.Value)
			delete(set, opt.Value)
		}
	}
	for _, v := range checked {
		if _, ok := set[v]; ok {
			out = append(out, v)
			delete(set, v)
		}
	}
	return out
}

// New builds a payload from entries, keeping the first value of a repeated
// name.
func New(entries ...Entry) Payload {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
	}
	return Payload{entries: out}
}

// Len returns the number of entries.
func (p Payload) Len() int {
	return len(p.entries)
}

// Get returns the value stored under name.
func (p Payload) Get(name string) (string, bool) {
	for _, e := range p.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// Entries returns a copy of the entries in order.
func (p Payload) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Names lists entry names in order.
func (p Payload) Names() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Name
	}
	return out
}

// Map returns the entries as a map.
func (p Payload) Map() map[string]string {
	out := make(map[string]string, len(p.entries))
	for _, e := range p.entries {
		out[e.Name] = e.Value
	}
	return out
}

// Equal reports whether both payloads hold the same entries in the same
// order.
func (p Payload) Equal(other Payload) bool {
	if len(p.entries) != len(other.entries) {
		return false
	}
	for i := range p.entries {
		if p.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the payload as a JSON object preserving entry order.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
