// Package sink renders assembled charts to output formats.
//
// The SVG sink is the native renderer: it consumes a chart plus a theme
// and emits a standalone SVG document. The JSON sink serializes the
// chart for external charting layers.
package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/plotkit/dotwhisker/pkg/chart"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/styles"
	"github.com/plotkit/dotwhisker/pkg/theme"
)

// SVGOption configures the SVG renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style      styles.Style
	hideLegend bool
}

// WithStyle selects the visual style. Default is styles.Classic.
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithoutLegend suppresses the model legend on multi-model charts.
func WithoutLegend() SVGOption { return func(r *svgRenderer) { r.hideLegend = true } }

// RenderSVG renders an assembled chart to a standalone SVG document.
// The chart must carry geometry, i.e. come from the pipeline assembler
// rather than from chart.Unmarshal.
func RenderSVG(c *chart.Chart, th theme.Theme, opts ...SVGOption) []byte {
	r := svgRenderer{style: styles.Classic{}}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		th.Width, th.Height, th.Width, th.Height)
	r.style.RenderDefs(&buf)

	if c.Geometry.Faceted {
		renderFacets(&buf, &r, c, th)
	} else {
		renderSingle(&buf, &r, c, th)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// frame is the pixel-space mapping for one panel.
type frame struct {
	left, right float64
	top, bottom float64
	xmin, xmax  float64 // data range on the estimate axis
	rows        int     // row bands on the term axis
	vertical    bool
}

// estPx maps an estimate value to pixels along the estimate axis.
func (f frame) estPx(v float64) float64 {
	span := f.xmax - f.xmin
	if span == 0 {
		span = 1
	}
	frac := (v - f.xmin) / span
	if f.vertical {
		return f.bottom - frac*(f.bottom-f.top)
	}
	return f.left + frac*(f.right-f.left)
}

// rowPx maps a row-unit position to pixels along the term axis. Row 0 is
// the bottom band horizontally, or the leftmost band when flipped.
func (f frame) rowPx(y float64) float64 {
	if f.rows == 0 {
		return f.bottom
	}
	band := f.bandSize()
	if f.vertical {
		return f.left + (y+0.5)*band
	}
	return f.bottom - (y+0.5)*band
}

func (f frame) bandSize() float64 {
	if f.rows == 0 {
		return 0
	}
	if f.vertical {
		return (f.right - f.left) / float64(f.rows)
	}
	return (f.bottom - f.top) / float64(f.rows)
}

// padRange widens a data range slightly so whisker ends clear the frame.
func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.05*span, hi + 0.05*span
}

func renderSingle(buf *bytes.Buffer, r *svgRenderer, c *chart.Chart, th theme.Theme) {
	g := c.Geometry
	xmin, xmax := padRange(g.XMin, g.XMax)

	f := frame{
		left: th.MarginLeft, right: th.Width - th.MarginRight,
		top: th.MarginTop, bottom: th.Height - th.MarginBottom,
		xmin: xmin, xmax: xmax,
		rows:     g.RowCount(),
		vertical: c.Vertical,
	}

	renderZeroLine(buf, f, th)
	renderEstimateAxis(buf, f, th)
	renderTermLabels(buf, f, th, g.Terms)
	renderMarks(buf, r, f, c, th)
	renderBrackets(buf, r, f, th, c)
	renderLayers(buf, f, th, c.Layers)

	if len(g.Models) > 1 && !r.hideLegend {
		renderLegend(buf, th, g.Models)
	}
}

func renderFacets(buf *bytes.Buffer, r *svgRenderer, c *chart.Chart, th theme.Theme) {
	g := c.Geometry
	xmin, xmax := padRange(g.XMin, g.XMax)

	n := g.RowCount()
	if n == 0 {
		return
	}
	const facetGap = 26 // room for each panel title
	panelH := (th.Height - th.MarginTop - th.MarginBottom - facetGap*float64(n)) / float64(n)

	// Facet index equals the canonical term row; panels stack with the
	// last term on top, matching the single-panel display order.
	for i := n - 1; i >= 0; i-- {
		top := th.MarginTop + float64(n-1-i)*(panelH+facetGap) + facetGap
		f := frame{
			left: th.MarginLeft, right: th.Width - th.MarginRight,
			top: top, bottom: top + panelH,
			xmin: xmin, xmax: xmax,
			rows: len(g.Models),
		}

		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s" font-weight="bold">%s</text>`+"\n",
			f.left, top-8, th.FontFamily, th.FontSize, th.Axis, styles.Escape(g.Terms[i]))

		renderZeroLine(buf, f, th)
		renderTermLabels(buf, f, th, reversed(g.Models))
		renderFacetMarks(buf, r, f, c, th, i)
		if i == 0 {
			renderEstimateAxis(buf, f, th)
		}
	}
}

func renderMarks(buf *bytes.Buffer, r *svgRenderer, f frame, c *chart.Chart, th theme.Theme) {
	band := f.bandSize()
	for _, m := range c.Geometry.Marks {
		if m.Placeholder {
			continue
		}
		drawMark(buf, r, f, th, m.ModelRank, m.X, m.Low, m.High, f.rowPx(m.Y), c.ID, m.Term, m.Model, band)
	}
}

func renderFacetMarks(buf *bytes.Buffer, r *svgRenderer, f frame, c *chart.Chart, th theme.Theme, facet int) {
	band := f.bandSize()
	for _, m := range c.Geometry.Marks {
		if m.Facet != facet || m.Placeholder {
			continue
		}
		drawMark(buf, r, f, th, m.ModelRank, m.X, m.Low, m.High, f.rowPx(m.Y), c.ID, m.Term, m.Model, band)
	}
}

func drawMark(buf *bytes.Buffer, r *svgRenderer, f frame, th theme.Theme, rank int, x, low, high, rowPx float64, chartID, term, model string, band float64) {
	color := th.Color(rank)
	capPx := th.WhiskerCap * band / 2

	w := styles.Whisker{
		X1: f.estPx(low), X2: f.estPx(high), Y: rowPx,
		Cap: capPx, Color: color, Vertical: f.vertical,
	}
	r.style.RenderWhisker(buf, w)

	d := styles.Dot{
		ID:    markID(chartID, term, model),
		R:     th.DotRadius,
		Color: color,
	}
	if f.vertical {
		d.X, d.Y = rowPx, f.estPx(x)
	} else {
		d.X, d.Y = f.estPx(x), rowPx
	}
	r.style.RenderDot(buf, d)
}

func renderZeroLine(buf *bytes.Buffer, f frame, th theme.Theme) {
	if th.ZeroLine == "" || f.xmin > 0 || f.xmax < 0 {
		return
	}
	z := f.estPx(0)
	if f.vertical {
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1" stroke-dasharray="4 3"/>`+"\n",
			f.left, z, f.right, z, th.ZeroLine)
		return
	}
	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1" stroke-dasharray="4 3"/>`+"\n",
		z, f.top, z, f.bottom, th.ZeroLine)
}

func renderEstimateAxis(buf *bytes.Buffer, f frame, th theme.Theme) {
	if f.vertical {
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			f.left, f.top, f.left, f.bottom, th.Axis)
	} else {
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			f.left, f.bottom, f.right, f.bottom, th.Axis)
	}

	for _, tick := range ticks(f.xmin, f.xmax, 5) {
		label := formatTick(tick)
		if f.vertical {
			y := f.estPx(tick)
			fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="end" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
				f.left-6, y+th.FontSize/3, th.FontFamily, th.FontSize, th.Axis, label)
		} else {
			x := f.estPx(tick)
			fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
				x, f.bottom, x, f.bottom+4, th.Axis)
			fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
				x, f.bottom+6+th.FontSize, th.FontFamily, th.FontSize, th.Axis, label)
		}
	}
}

func renderTermLabels(buf *bytes.Buffer, f frame, th theme.Theme, labels []string) {
	for i, label := range labels {
		p := f.rowPx(float64(i))
		if f.vertical {
			fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
				p, f.bottom+6+th.FontSize, th.FontFamily, th.FontSize, th.Axis, styles.Escape(label))
		} else {
			fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="end" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
				f.left-8, p+th.FontSize/3, th.FontFamily, th.FontSize, th.Axis, styles.Escape(label))
		}
	}
}

func renderBrackets(buf *bytes.Buffer, r *svgRenderer, f frame, th theme.Theme, c *chart.Chart) {
	band := f.bandSize()
	for _, b := range c.Geometry.Brackets {
		tick := b.TickLen
		if tick == 0 {
			tick = th.BracketTickLen
		}

		if f.vertical {
			// Flipped: rowPx runs along x, so the bracket becomes a
			// horizontal span below the term labels, ticks pointing up.
			xLeft := f.rowPx(b.Y1) - band/2
			xRight := f.rowPx(b.Y2) + band/2
			r.style.RenderBracket(buf, styles.Bracket{
				X:        f.bottom + 2*th.FontSize,
				Y1:       xLeft,
				Y2:       xRight,
				Tick:     tick * (f.bottom - f.top),
				Label:    b.Label,
				Color:    th.Axis,
				Font:     th.FontFamily,
				FontSize: th.FontSize,
				Vertical: true,
			})
			continue
		}

		// Extend half a band past the member row centers so the bracket
		// visually encloses its rows.
		yTop := f.rowPx(b.Y2) - band/2
		yBot := f.rowPx(b.Y1) + band/2
		r.style.RenderBracket(buf, styles.Bracket{
			X:        14,
			Y1:       yTop,
			Y2:       yBot,
			Tick:     tick * (f.right - f.left),
			Label:    b.Label,
			Color:    th.Axis,
			Font:     th.FontFamily,
			FontSize: th.FontSize,
		})
	}
}

func renderLayers(buf *bytes.Buffer, f frame, th theme.Theme, layers []chart.Layer) {
	for _, l := range layers {
		color := l.Color
		if color == "" {
			color = th.Axis
		}
		switch l.Kind {
		case "vline":
			x := f.estPx(l.At)
			fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1" stroke-dasharray="2 2"/>`+"\n",
				x, f.top, x, f.bottom, color)
		case "hline":
			y := f.rowPx(l.At)
			fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1" stroke-dasharray="2 2"/>`+"\n",
				f.left, y, f.right, y, color)
		case "text":
			fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
				f.estPx(l.X), f.rowPx(l.Y), th.FontFamily, th.FontSize, color, styles.Escape(l.Text))
		}
	}
}

func renderLegend(buf *bytes.Buffer, th theme.Theme, models []string) {
	x := th.MarginLeft
	y := th.MarginTop - 8
	for i, m := range models {
		color := th.Color(i)
		fmt.Fprintf(buf, `  <circle cx="%.2f" cy="%.2f" r="4" fill="%s"/>`+"\n", x, y, color)
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
			x+8, y+th.FontSize/3, th.FontFamily, th.FontSize, th.Axis, styles.Escape(m))
		x += 16 + float64(len(m))*th.FontSize*0.62
	}
}

// ticks returns n evenly spaced tick positions across [lo, hi].
func ticks(lo, hi float64, n int) []float64 {
	if n < 2 || hi <= lo {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func formatTick(v float64) string {
	if math.Abs(v) < 1e-10 {
		return "0"
	}
	return fmt.Sprintf("%.3g", v)
}

func markID(chartID, term, model string) string {
	id := "mark-" + chartID + "-" + term
	if model != "" {
		id += "-" + model
	}
	return sanitizeID(id)
}

// sanitizeID keeps element ids valid: spaces and quotes become dashes.
func sanitizeID(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
