package payload

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Format controls how a payload is serialized.
type Format string

const (
	// FormatJSON emits application/json payloads.
	FormatJSON Format = "json"
	// FormatForm emits application/x-www-form-urlencoded payloads.
	FormatForm Format = "form"
	// FormatPretty emits a human-friendly text summary.
	FormatPretty Format = "pretty"
)

// ErrUnknownFormat is returned for a format outside json, form and pretty.
var ErrUnknownFormat = errors.New("payload: unknown format")

// ParseFormat resolves a user-supplied format name. Empty selects JSON.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatForm, "urlencoded", "x-www-form-urlencoded":
		return FormatForm, nil
	case FormatPretty, "text":
		return FormatPretty, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatForm:
		return "application/x-www-form-urlencoded"
	case FormatPretty:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Encode serializes p in format f.
func (f Format) Encode(p Payload) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return EncodeJSON(p)
	case FormatForm:
		return []byte(EncodeForm(p)), nil
	case FormatPretty:
		return []byte(EncodePretty(p)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// EncodeJSON encodes the payload as an ordered JSON object.
func EncodeJSON(p Payload) ([]byte, error) {
	return p.MarshalJSON()
}

// EncodeForm encodes the payload as x-www-form-urlencoded text in entry
// order.
func EncodeForm(p Payload) string {
	var b strings.Builder
	for i, e := range p.entries {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(e.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(e.Value))
	}
	return b.String()
}

// EncodePretty renders one "name: value" line per entry.
func EncodePretty(p Payload) string {
	var b strings.Builder
	for _, e := range p.entries {
		b.WriteString(e.Name)
		b.WriteString(": ")
		b.WriteString(e.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

// Values converts the payload to url.Values.
func (p Payload) Values() url.Values {
	out := make(url.Values, len(p.entries))
	for _, e := range p.entries {
		out.Set(e.Name, e.Value)
	}
	return out
}
