package styles

import "bytes"

// Style defines the visual vocabulary for whisker-chart rendering.
// Implementations write SVG fragments for each glyph; positioning is
// decided by the sink, styles only control appearance.
type Style interface {
	// RenderDefs writes SVG <defs> content shared by the chart.
	RenderDefs(buf *bytes.Buffer)
	// RenderWhisker writes the interval line for one coefficient.
	RenderWhisker(buf *bytes.Buffer, w Whisker)
	// RenderDot writes the point-estimate marker.
	RenderDot(buf *bytes.Buffer, d Dot)
	// RenderBracket writes a group bracket with its end ticks and label.
	RenderBracket(buf *bytes.Buffer, b Bracket)
}

// Dot contains all data needed to draw a point-estimate marker.
type Dot struct {
	ID     string  // Element id (chart-scoped)
	X, Y   float64 // Center, pixels
	R      float64 // Radius, pixels
	Color  string
	Hollow bool // Placeholder-adjacent styling hook
}

// Whisker contains positioning data for one confidence interval line.
type Whisker struct {
	X1, X2, Y float64 // Endpoints and row position, pixels
	Cap       float64 // End-cap half-height in pixels (0 = no caps)
	Color     string
	Vertical  bool // Flipped orientation: X/Y roles swapped by the sink
}

// Bracket contains positioning data for one group annotation.
type Bracket struct {
	X        float64 // Spine position, pixels
	Y1, Y2   float64 // Span, pixels (Y1 above Y2 in screen space)
	Tick     float64 // Perpendicular tick length, pixels
	Label    string
	Color    string
	FontSize float64
	Font     string
	Vertical bool // Flipped orientation: horizontal spine, Y1/Y2 span along x
}
