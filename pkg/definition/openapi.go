package definition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formwizard/pkg/model"
)

const (
	wizardExtension      = "x-wizard"
	stepExtension        = "x-wizard-step"
	orderExtension       = "x-wizard-order"
	inputExtension       = "x-wizard-input"
	placeholderExtension = "x-wizard-placeholder"
	optionLabelExtension = "x-wizard-option-labels"
)

// ErrOperationNotFound is returned when the requested operation id is absent.
var ErrOperationNotFound = errors.New("definition: operation not found")

// wizardMeta mirrors the operation-level x-wizard extension.
type wizardMeta struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Steps       []stepMeta `json:"steps"`
}

type stepMeta struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Kind              model.StepKind `json:"kind"`
	PayloadKey        string         `json:"payload_key"`
	IncompleteMessage string         `json:"incomplete_message"`
}

type property struct {
	name   string
	order  float64
	schema *openapi3.Schema
}

// FromOpenAPI builds a wizard from the request body of operationID. The
// operation carries an x-wizard extension listing the steps; every request
// property names its step through x-wizard-step. Enum properties feed
// selection steps (the property name becomes the payload key unless the step
// sets one) and the remaining properties become fields.
func FromOpenAPI(ctx context.Context, data []byte, operationID string) (model.Wizard, error) {
	if err := ctx.Err(); err != nil {
		return model.Wizard{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.Wizard{}, errors.New("definition: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return model.Wizard{}, fmt.Errorf("definition: load openapi document: %w", err)
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return model.Wizard{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	var meta wizardMeta
	if err := decodeExtension(op.Extensions[wizardExtension], &meta); err != nil {
		return model.Wizard{}, fmt.Errorf("definition: operation %q: %s: %w", operationID, wizardExtension, err)
	}
	if len(meta.Steps) == 0 {
		return model.Wizard{}, fmt.Errorf("definition: operation %q declares no %s steps", operationID, wizardExtension)
	}

	body := requestSchema(op)
	if body == nil {
		return model.Wizard{}, fmt.Errorf("definition: operation %q has no request body schema", operationID)
	}

	def := model.Wizard{
		ID:          firstNonEmpty(meta.ID, operationID),
		Title:       firstNonEmpty(meta.Title, op.Summary),
		Description: firstNonEmpty(meta.Description, op.Description),
	}

	grouped, err := groupProperties(body, meta.Steps)
	if err != nil {
		return model.Wizard{}, fmt.Errorf("definition: operation %q: %w", operationID, err)
	}
	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	for _, sm := range meta.Steps {
		step := model.Step{
			ID:                sm.ID,
			Title:             sm.Title,
			Description:       sm.Description,
			Kind:              sm.Kind,
			PayloadKey:        sm.PayloadKey,
			IncompleteMessage: sm.IncompleteMessage,
		}
		props := grouped[sm.ID]
		switch sm.Kind {
		case model.StepKindSingle, model.StepKindMulti:
			if len(props) != 1 {
				return model.Wizard{}, fmt.Errorf("definition: step %q needs exactly one enum property, found %d", sm.ID, len(props))
			}
			if step.PayloadKey == "" {
				step.PayloadKey = props[0].name
			}
			step.Options = optionsFor(props[0].schema, sm.Kind)
		default:
			for _, prop := range props {
				step.Fields = append(step.Fields, fieldFor(prop, required[prop.name]))
			}
		}
		def.Steps = append(def.Steps, step)
	}

	if err := def.Validate(); err != nil {
		return model.Wizard{}, fmt.Errorf("definition: operation %q: %w", operationID, err)
	}
	return def, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "application/json", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func groupProperties(body *openapi3.Schema, steps []stepMeta) (map[string][]property, error) {
	known := make(map[string]bool, len(steps))
	for _, sm := range steps {
		known[sm.ID] = true
	}

	grouped := make(map[string][]property, len(steps))
	for name, ref := range body.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		stepID, _ := ref.Value.Extensions[stepExtension].(string)
		if stepID == "" {
			continue
		}
		if !known[stepID] {
			return nil, fmt.Errorf("property %q references unknown step %q", name, stepID)
		}
		grouped[stepID] = append(grouped[stepID], property{
			name:   name,
			order:  numberExtension(ref.Value.Extensions[orderExtension]),
			schema: ref.Value,
		})
	}

	for id := range grouped {
		props := grouped[id]
		sort.SliceStable(props, func(i, j int) bool {
			if props[i].order != props[j].order {
				return props[i].order < props[j].order
			}
			return props[i].name < props[j].name
		})
	}
	return grouped, nil
}

func optionsFor(schema *openapi3.Schema, kind model.StepKind) []model.Option {
	source := schema
	if kind == model.StepKindMulti && schema.Items != nil && schema.Items.Value != nil {
		source = schema.Items.Value
	}
	labels := stringMapExtension(schema.Extensions[optionLabelExtension])

	options := make([]model.Option, 0, len(source.Enum))
	for _, raw := range source.Enum {
		value := fmt.Sprint(raw)
		options = append(options, model.Option{Value: value, Label: labels[value]})
	}
	return options
}

func fieldFor(prop property, required bool) model.Field {
	field := model.Field{
		Name:     prop.name,
		Label:    prop.schema.Title,
		Required: required,
	}
	if placeholder, ok := prop.schema.Extensions[placeholderExtension].(string); ok {
		field.Placeholder = placeholder
	}
	if input, ok := prop.schema.Extensions[inputExtension].(string); ok && input != "" {
		field.InputType = input
		return field
	}
	switch strings.ToLower(prop.schema.Format) {
	case "email":
		field.InputType = "email"
	case "tel", "phone":
		field.InputType = "tel"
	}
	return field
}

func decodeExtension(value any, target any) error {
	if value == nil {
		return errors.New("extension missing")
	}
	var raw []byte
	switch v := value.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		raw = encoded
	}
	return json.Unmarshal(raw, target)
}

func numberExtension(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

func stringMapExtension(value any) map[string]string {
	mapped, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(mapped))
	for key, v := range mapped {
		if s, ok := v.(string); ok {
			out[key] = s
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
