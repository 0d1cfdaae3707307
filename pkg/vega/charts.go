package vega

import "github.com/pkgpulse/pkgpulse/pkg/timeseries"

// SingleSeries builds the highlighted time-series chart for one project:
// a line through (date, downloads), a hover-nearest point colored green when
// that bucket's delta is non-negative and red otherwise, and an invisible
// rule layer carrying the tooltip. Empty input yields a spec with an empty
// values array, which renders as an empty chart.
func SingleSeries(rows []timeseries.DownloadRecord) *Spec {
	if rows == nil {
		rows = []timeseries.DownloadRecord{}
	}

	x := &Field{Field: "date", Type: "temporal"}
	y := &Field{Field: "downloads", Type: "quantitative"}

	lines := &Spec{
		Mark: &Mark{Type: "line", Point: PointOverlay{Color: "transparent"}},
		Transform: []Transform{
			{Calculate: `datum.delta < 0 ? "red" : "green"`, As: "color"},
		},
		Encoding: &Encoding{X: x, Y: y},
		Params: []Param{
			{Name: "grid", Select: "interval", Bind: "scales"},
		},
	}

	// Highlighted point at the hover-nearest bucket, colored by the sign of
	// the delta. scale:null makes Vega-Lite use the literal color value.
	points := &Spec{
		Mark: &Mark{Type: "circle", Size: 65},
		Transform: []Transform{
			{Filter: ParamRef{Param: "hover", Empty: boolPtr(false)}},
			{Calculate: `datum.delta < 0 ? "red" : "green"`, As: "color"},
		},
		Encoding: &Encoding{
			X:     x,
			Y:     y,
			Color: &Field{Field: "color", Type: "nominal", Scale: NullScale{}},
		},
	}

	tooltips := &Spec{
		Mark: &Mark{Type: "rule", Opacity: floatPtr(0)},
		Encoding: &Encoding{
			X: x,
			Y: y,
			Tooltip: []Field{
				{Field: "date", Type: "temporal"},
				{Field: "downloads", Type: "quantitative"},
				{Field: "delta", Type: "quantitative", Format: ".2%"},
			},
		},
		Params: []Param{
			{Name: "hover", Select: &Select{
				Type:    "point",
				Fields:  []string{"date"},
				Nearest: true,
				On:      "mouseover",
				Clear:   "mouseout",
			}},
		},
	}

	return &Spec{
		Schema: SchemaURL,
		Width:  "container",
		Height: 300,
		Data:   &Data{Values: rows},
		Layer:  []*Spec{lines, points, tooltips},
	}
}

// Comparison builds the linked two-view chart across projects: a multi-line
// view with an interval brush on the x axis, and a horizontal bar view of
// per-project totals restricted to the brushed interval. Clicking bars selects
// projects by color and highlights them in both views. The brush and click
// selections live in the spec itself; the server keeps no selection state.
func Comparison(rows []timeseries.DownloadRecord, logScale bool) *Spec {
	if rows == nil {
		rows = []timeseries.DownloadRecord{}
	}

	scale := &Scale{Type: "linear"}
	if logScale {
		scale = &Scale{Type: "log"}
	}

	lines := &Spec{
		Width:  550,
		Height: 300,
		Mark:   &Mark{Type: "line", Point: true},
		Params: []Param{
			{Name: "brush", Select: &Select{Type: "interval", Encodings: []string{"x"}}},
		},
		Transform: []Transform{
			{Filter: ParamRef{Param: "click"}},
		},
		Encoding: &Encoding{
			X:     &Field{Field: "date", Type: "temporal"},
			Y:     &Field{Field: "downloads", Type: "quantitative", Scale: scale},
			Color: &Field{Field: "project", Type: "nominal"},
			Tooltip: []Field{
				{Field: "date", Type: "temporal"},
				{Field: "project", Type: "nominal"},
				{Field: "downloads", Type: "quantitative"},
				{Field: "delta", Type: "quantitative", Format: ".2%"},
			},
		},
	}

	bars := &Spec{
		Width: 550,
		Mark:  &Mark{Type: "bar"},
		Params: []Param{
			{Name: "click", Select: &Select{Type: "point", Encodings: []string{"color"}}},
		},
		Transform: []Transform{
			{Filter: ParamRef{Param: "brush"}},
		},
		Encoding: &Encoding{
			Y:     &Field{Field: "project", Type: "nominal"},
			X:     &Field{Field: "downloads", Type: "quantitative", Aggregate: "sum", Scale: scale},
			Color: &Field{Field: "project", Type: "nominal"},
			Tooltip: []Field{
				{Field: "project", Type: "nominal"},
				{Field: "downloads", Type: "quantitative", Aggregate: "sum"},
			},
		},
	}

	return &Spec{
		Schema:  SchemaURL,
		Data:    &Data{Values: rows},
		VConcat: []*Spec{lines, bars},
	}
}
