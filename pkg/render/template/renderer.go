package template

import (
	"io"
)

// TemplateRenderer is the seam rendering surfaces depend on. Data is converted
// through its JSON form, so templates address struct fields by json tag.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
