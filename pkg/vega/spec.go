// Package vega builds Vega-Lite specifications for the dashboard charts.
// Only the subset of the grammar the two chart builders need is typed;
// the specs are marshaled to JSON and rendered client-side by vega-embed.
package vega

// SchemaURL is the Vega-Lite v5 schema the emitted specs declare.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Spec is a (possibly nested) Vega-Lite unit, layer or concat spec.
type Spec struct {
	Schema      string      `json:"$schema,omitempty"`
	Description string      `json:"description,omitempty"`
	Width       interface{} `json:"width,omitempty"` // int or "container"
	Height      interface{} `json:"height,omitempty"`
	Data        *Data       `json:"data,omitempty"`
	Mark        *Mark       `json:"mark,omitempty"`
	Encoding    *Encoding   `json:"encoding,omitempty"`
	Transform   []Transform `json:"transform,omitempty"`
	Params      []Param     `json:"params,omitempty"`
	Layer       []*Spec     `json:"layer,omitempty"`
	VConcat     []*Spec     `json:"vconcat,omitempty"`
}

// Data carries inline values; the dashboard never points charts at URLs.
type Data struct {
	Values interface{} `json:"values"`
}

// Mark describes how a unit spec draws its data.
type Mark struct {
	Type    string      `json:"type"`
	Point   interface{} `json:"point,omitempty"` // bool or point overlay config
	Size    float64     `json:"size,omitempty"`
	Opacity *float64    `json:"opacity,omitempty"`
}

// PointOverlay configures the point overlay of a line mark.
type PointOverlay struct {
	Color string `json:"color,omitempty"`
}

// Encoding maps data fields to visual channels.
type Encoding struct {
	X       *Field  `json:"x,omitempty"`
	Y       *Field  `json:"y,omitempty"`
	Color   *Field  `json:"color,omitempty"`
	Tooltip []Field `json:"tooltip,omitempty"`
}

// Field is a channel definition.
type Field struct {
	Field     string      `json:"field,omitempty"`
	Type      string      `json:"type,omitempty"`
	Aggregate string      `json:"aggregate,omitempty"`
	Title     string      `json:"title,omitempty"`
	Format    string      `json:"format,omitempty"`
	Scale     interface{} `json:"scale,omitempty"` // *Scale, or NullScale to disable
}

// Scale customizes a channel's scale; Type is "linear" or "log" here.
type Scale struct {
	Type string `json:"type,omitempty"`
}

// NullScale marshals as a JSON null, which tells Vega-Lite to use the raw
// field value (a literal color name) instead of mapping it through a scale.
type NullScale struct{}

func (NullScale) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Transform is a calculate or filter step.
type Transform struct {
	Calculate string      `json:"calculate,omitempty"`
	As        string      `json:"as,omitempty"`
	Filter    interface{} `json:"filter,omitempty"`
}

// Param declares a selection or binding parameter on a view.
type Param struct {
	Name   string      `json:"name"`
	Select interface{} `json:"select,omitempty"` // *Select, or the string "interval"
	Bind   string      `json:"bind,omitempty"`   // "scales" enables pan/zoom
}

// Select configures a point or interval selection.
type Select struct {
	Type      string   `json:"type"`
	Fields    []string `json:"fields,omitempty"`
	Encodings []string `json:"encodings,omitempty"`
	Nearest   bool     `json:"nearest,omitempty"`
	On        string   `json:"on,omitempty"`
	Clear     string   `json:"clear,omitempty"`
	Toggle    string   `json:"toggle,omitempty"`
}

// ParamRef references a selection parameter inside a filter transform.
type ParamRef struct {
	Param string `json:"param"`
	Empty *bool  `json:"empty,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
