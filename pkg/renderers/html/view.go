package html

import "github.com/goliatone/go-formwizard/pkg/render"

type pageView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Step        int          `json:"step"`
	Total       int          `json:"total"`
	Percent     float64      `json:"percent"`
	Controls    controlsView `json:"controls"`
	Steps       []stepView   `json:"steps"`
	Loading     bool         `json:"loading"`
	Error       *errorView   `json:"error,omitempty"`
	Success     *successView `json:"success,omitempty"`
	Theme       themeView    `json:"theme"`

	Hidden []render.HiddenField `json:"hidden,omitempty"`
}

type controlsView struct {
	PrevEnabled   bool `json:"prevEnabled"`
	NextVisible   bool `json:"nextVisible"`
	SubmitVisible bool `json:"submitVisible"`
}

type stepView struct {
	Number      int          `json:"number"`
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Kind        string       `json:"kind"`
	PayloadKey  string       `json:"payloadKey,omitempty"`
	Active      bool         `json:"active"`
	Notice      string       `json:"notice,omitempty"`
	Options     []optionView `json:"options,omitempty"`
	Fields      []fieldView  `json:"fields,omitempty"`
}

type optionView struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Selected    bool   `json:"selected"`
}

type fieldView struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	InputType   string `json:"inputType,omitempty"`
	HTMLType    string `json:"htmlType"`
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value"`
	Required    bool   `json:"required"`
	State       string `json:"state,omitempty"`
}

type errorView struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

type successView struct {
	Reference string `json:"reference"`
}

type themeView struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	CSSVarsStyle string `json:"cssVarsStyle,omitempty"`
	Stylesheet   string `json:"stylesheet,omitempty"`
}
