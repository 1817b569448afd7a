package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies the semantic type used to check a single field value.
type Kind string

const (
	// KindText covers every input without a dedicated format rule.
	KindText Kind = "text"
	// KindEmail applies the loose name@host.tld shape.
	KindEmail Kind = "email"
	// KindPhone accepts an optional leading + and 8+ digits, spaces, hyphens
	// or parentheses.
	KindPhone Kind = "phone"
	// KindPostcode accepts 3 to 10 letters, digits or spaces.
	KindPostcode Kind = "postcode"
)

// Outcome is the tri-state presentation result of a field check.
type Outcome int

const (
	// OutcomeUntouched means the field is empty and optional: nothing to style.
	OutcomeUntouched Outcome = iota
	// OutcomeValid means the value passed every rule for its kind.
	OutcomeValid
	// OutcomeInvalid means the value is missing or malformed.
	OutcomeInvalid
)

// OK reports whether the outcome should not block the user. Empty optional
// fields count as valid-absent.
func (o Outcome) OK() bool {
	return o != OutcomeInvalid
}

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "untouched"
	}
}

// space is the Unicode whitespace set values are trimmed by and the patterns
// treat as blanks. RE2's \s only covers ASCII.
const space = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

var (
	emailPattern    = regexp.MustCompile(`^[^` + space + `@]+@[^` + space + `@]+\.[^` + space + `@]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9` + space + `\-()]{8,}$`)
	postcodePattern = regexp.MustCompile(`^[A-Za-z0-9` + space + `]{3,10}$`)
)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00A0', '\u1680', '\u2028', '\u2029', '\u202F', '\u205F', '\u3000', '\uFEFF':
		return true
	}
	return r >= '\u2000' && r <= '\u200A'
}

func trim(raw string) string {
	return strings.TrimFunc(raw, isSpace)
}

// Blank reports whether raw holds nothing but whitespace.
func Blank(raw string) bool {
	return trim(raw) == ""
}

// KindFor maps an input to its validation kind. Postcodes are matched by
// field name; email and phone by input type.
func KindFor(name, inputType string) Kind {
	if strings.EqualFold(strings.TrimSpace(name), "postcode") {
		return KindPostcode
	}
	switch strings.ToLower(strings.TrimSpace(inputType)) {
	case "email":
		return KindEmail
	case "tel", "phone":
		return KindPhone
	default:
		return KindText
	}
}

// Validate classifies raw for the given kind. The value is trimmed before any
// rule runs and the function never fails.
func Validate(kind Kind, raw string, required bool) Outcome {
	value := trim(raw)
	if value == "" {
		if required {
			return OutcomeInvalid
		}
		return OutcomeUntouched
	}
	if matches(kind, value) {
		return OutcomeValid
	}
	return OutcomeInvalid
}

func matches(kind Kind, value string) bool {
	switch kind {
	case KindEmail:
		return emailPattern.MatchString(value)
	case KindPhone:
		return phonePattern.MatchString(value)
	case KindPostcode:
		return postcodePattern.MatchString(value)
	default:
		return true
	}
}

// FieldError describes why a value failed. Prompt-driven surfaces use it as a
// validator error; the wizard itself only deals in Outcome values.
type FieldError struct {
	Kind   Kind
	Reason string
}

func (e *FieldError) Error() string {
	return e.Reason
}

// Check returns a *FieldError when raw is invalid for kind and nil otherwise.
func Check(kind Kind, raw string, required bool) error {
	if Validate(kind, raw, required) != OutcomeInvalid {
		return nil
	}
	if trim(raw) == "" {
		return &FieldError{Kind: kind, Reason: "required"}
	}
	switch kind {
	case KindEmail:
		return &FieldError{Kind: kind, Reason: "enter a valid email address"}
	case KindPhone:
		return &FieldError{Kind: kind, Reason: "enter a valid phone number"}
	case KindPostcode:
		return &FieldError{Kind: kind, Reason: "enter a valid postcode"}
	default:
		return &FieldError{Kind: kind, Reason: fmt.Sprintf("invalid %s value", kind)}
	}
}
