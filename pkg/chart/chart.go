// Package chart defines the canonical serialization format for assembled
// charts.
//
// A Chart is the hand-off object between the transformation pipeline and
// a charting layer: the final tidy table in display order, the aesthetic
// mapping, annotation instructions, and the data-unit geometry. The JSON
// form is designed for round-trip fidelity so external charting layers
// can consume it directly; the native SVG sink consumes the same object.
//
// Charts are composable: callers may append annotation layers after
// assembly and re-render.
package chart

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/layout"
)

// Chart kinds.
const (
	KindPlot          = "plot"
	KindSecretWeapon  = "secret_weapon"
	KindSmallMultiple = "small_multiple"
)

// Chart is an assembled, render-ready coefficient plot.
type Chart struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	// Points list the final tidy table in display order: top chart row
	// first, models in dodge order within a row.
	Points []Point `json:"points"`

	// Aes is the default aesthetic mapping applied by renderers.
	Aes Aesthetics `json:"aesthetics"`

	// Brackets are group annotations alongside the term axis.
	Brackets []Bracket `json:"brackets,omitempty"`

	// Layers are caller-appended annotations drawn over the base chart.
	Layers []Layer `json:"layers,omitempty"`

	Alpha    float64 `json:"alpha"`
	Vertical bool    `json:"vertical,omitempty"` // flip: terms on the x axis

	// Geometry is the data-unit layout renderers draw from. It is
	// reconstructable from Points, so it stays out of the JSON form.
	Geometry layout.Layout `json:"-"`
}

// Point is one row of the final tidy table. Absent numeric values are
// nil, which is how grid placeholders serialize.
type Point struct {
	Term     string   `json:"term"`
	Model    string   `json:"model,omitempty"`
	Submodel string   `json:"submodel,omitempty"`
	Estimate *float64 `json:"estimate"`
	Low      *float64 `json:"lb"`
	High     *float64 `json:"ub"`
}

// Aesthetics names the default mapping from table columns to visual
// channels, mirroring the conventional dot-and-whisker encoding.
type Aesthetics struct {
	X       string `json:"x"`        // estimate
	XMin    string `json:"xmin"`     // lb
	XMax    string `json:"xmax"`     // ub
	Y       string `json:"y"`        // ordered term position
	Color   string `json:"color"`    // model
	FacetBy string `json:"facet_by"` // term, in small-multiple mode
}

// DefaultAesthetics returns the standard mapping: x = estimate, whisker
// endpoints = lb/ub, y = ordered term position, color/group = model.
func DefaultAesthetics() Aesthetics {
	return Aesthetics{
		X:     "estimate",
		XMin:  "lb",
		XMax:  "ub",
		Y:     "term",
		Color: "model",
	}
}

// Bracket is a serialized group annotation.
type Bracket struct {
	Label string  `json:"label"`
	Y1    float64 `json:"y1"`
	Y2    float64 `json:"y2"`
}

// Layer is a caller-appended annotation. Kind selects the drawing
// primitive; unused fields are ignored by renderers.
type Layer struct {
	Kind  string  `json:"kind"` // "vline", "hline", or "text"
	At    float64 `json:"at,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Text  string  `json:"text,omitempty"`
	Color string  `json:"color,omitempty"`
}

// New assembles a chart from a finalized table and its geometry. Points
// are emitted top chart row first, so in the single-model case the last
// input term leads, matching the display convention.
func New(kind string, t *coeff.Table, geom layout.Layout, alpha float64) *Chart {
	c := &Chart{
		ID:       uuid.NewString(),
		Kind:     kind,
		Aes:      DefaultAesthetics(),
		Alpha:    alpha,
		Geometry: geom,
	}
	if kind == KindSmallMultiple {
		c.Aes.FacetBy = "term"
	}

	rows := t.Rows()
	byTerm := make(map[string][]coeff.Row, len(geom.Terms))
	for _, r := range rows {
		byTerm[r.Term] = append(byTerm[r.Term], r)
	}
	// Terms render bottom-up, so serialization walks them in reverse.
	for i := len(geom.Terms) - 1; i >= 0; i-- {
		for _, r := range byTerm[geom.Terms[i]] {
			c.Points = append(c.Points, pointFromRow(r))
		}
	}
	for _, b := range geom.Brackets {
		c.Brackets = append(c.Brackets, Bracket{Label: b.Label, Y1: b.Y1, Y2: b.Y2})
	}
	return c
}

// WithLayer returns the chart with an extra annotation layer appended.
func (c *Chart) WithLayer(l Layer) *Chart {
	c.Layers = append(c.Layers, l)
	return c
}

// Marshal serializes the chart to indented JSON.
func (c *Chart) Marshal() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Chart. The geometry is not
// part of the wire form and stays zero.
func Unmarshal(data []byte) (*Chart, error) {
	var c Chart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func pointFromRow(r coeff.Row) Point {
	return Point{
		Term:     r.Term,
		Model:    r.Model,
		Submodel: r.Submodel,
		Estimate: optional(r.Estimate),
		Low:      optional(r.Low),
		High:     optional(r.High),
	}
}

func optional(v float64) *float64 {
	if coeff.IsNA(v) {
		return nil
	}
	return &v
}
